package mail

import (
	"fmt"
	"strings"
	"time"

	"github.com/markethive/accounts-backend/pkg/config"
)

// ActivationMessage renders the verification email sent after signup.
func ActivationMessage(site config.SiteConfig, firstName, email, code string, ttl time.Duration) Message {
	name := titleCase(firstName)
	minutes := int(ttl.Minutes())
	plain := fmt.Sprintf(`Hi, %s.
Thank you for signing up!
Complete your verification on %s with the OTP below:

		%s

Expires in %d minutes!

Cheers,
%s Team
`, name, site.Name, code, minutes, site.Name)

	return Message{
		ToName:    name,
		ToEmail:   email,
		Subject:   strings.ToUpper(fmt.Sprintf("ACCOUNT VERIFICATION FOR %s", site.Name)),
		PlainBody: plain,
		HTMLBody:  otpHTML(name, site.Name, code, minutes),
	}
}

// NewOTPMessage renders the email sent when a user requests a fresh code.
func NewOTPMessage(site config.SiteConfig, firstName, email, code string, ttl time.Duration) Message {
	name := titleCase(firstName)
	minutes := int(ttl.Minutes())
	plain := fmt.Sprintf(`Hi, %s.

Complete your verification on %s with the OTP below:

		%s

Expires in %d minutes!

Thank you,
%s Team
`, name, site.Name, code, minutes, site.Name)

	return Message{
		ToName:    name,
		ToEmail:   email,
		Subject:   fmt.Sprintf("NEW OTP FOR %s", site.Name),
		PlainBody: plain,
		HTMLBody:  otpHTML(name, site.Name, code, minutes),
	}
}

// ConfirmationMessage renders the email sent once an account is activated.
func ConfirmationMessage(site config.SiteConfig, firstName, email string) Message {
	name := titleCase(firstName)
	plain := fmt.Sprintf(`Hi, %s.
Your account has been activated and is ready to use!

Cheers,
%s Team
`, name, site.Name)

	html := fmt.Sprintf(`<p>Hi, %s.</p>
<p>Your account has been activated and is ready to use!</p>
<p><a href=%q>Visit %s</a></p>
<p>Cheers,<br>%s Team</p>`, name, site.MarketplaceURL, site.Name, site.Name)

	return Message{
		ToName:    name,
		ToEmail:   email,
		Subject:   "VERIFICATION COMPLETE",
		PlainBody: plain,
		HTMLBody:  html,
	}
}

// AdminCredentialsMessage renders the onboarding email sent to a staff
// account created by an administrator. The temporary password is only ever
// available here; it is stored hashed.
func AdminCredentialsMessage(site config.SiteConfig, firstName, email, password string) Message {
	name := titleCase(firstName)
	plain := fmt.Sprintf(`Hi, %s.
You have just been on boarded on the %s platform. Your login details are below:
E-mail: %s
Password: %s

Regards,
%s Support Team
`, name, site.Name, email, password, site.Name)

	return Message{
		ToName:    name,
		ToEmail:   email,
		Subject:   strings.ToUpper(fmt.Sprintf("YOUR ADMIN ACCOUNT FOR %s", site.Name)),
		PlainBody: plain,
	}
}

func otpHTML(name, siteName, code string, minutes int) string {
	return fmt.Sprintf(`<p>Hi, %s.</p>
<p>Complete your verification on %s with the OTP below:</p>
<h2 style="letter-spacing:4px">%s</h2>
<p>Expires in %d minutes!</p>
<p>Cheers,<br>%s Team</p>`, name, siteName, code, minutes, siteName)
}

func titleCase(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:])
}
