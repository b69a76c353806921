package mail

import (
	"strings"
	"testing"
	"time"

	"github.com/markethive/accounts-backend/pkg/config"
)

func testSite() config.SiteConfig {
	return config.SiteConfig{
		Name:           "MarketHive",
		MarketplaceURL: "https://markethive.example.com",
	}
}

func TestActivationMessage(t *testing.T) {
	msg := ActivationMessage(testSite(), "ada", "ada@example.com", "482913", 10*time.Minute)

	if msg.Subject != "ACCOUNT VERIFICATION FOR MARKETHIVE" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if msg.ToEmail != "ada@example.com" {
		t.Fatalf("unexpected recipient %q", msg.ToEmail)
	}
	if !strings.Contains(msg.PlainBody, "482913") {
		t.Fatalf("plain body missing code: %q", msg.PlainBody)
	}
	if !strings.Contains(msg.PlainBody, "Hi, Ada.") {
		t.Fatalf("expected title-cased greeting, got %q", msg.PlainBody)
	}
	if !strings.Contains(msg.PlainBody, "Expires in 10 minutes") {
		t.Fatalf("plain body missing expiry: %q", msg.PlainBody)
	}
	if !strings.Contains(msg.HTMLBody, "482913") {
		t.Fatalf("html body missing code: %q", msg.HTMLBody)
	}
}

func TestNewOTPMessage(t *testing.T) {
	msg := NewOTPMessage(testSite(), "Grace", "grace@example.com", "000111", 10*time.Minute)

	if msg.Subject != "NEW OTP FOR MarketHive" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.PlainBody, "000111") {
		t.Fatalf("plain body missing code: %q", msg.PlainBody)
	}
}

func TestConfirmationMessage(t *testing.T) {
	msg := ConfirmationMessage(testSite(), "linus", "linus@example.com")

	if msg.Subject != "VERIFICATION COMPLETE" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.PlainBody, "activated and is ready to use") {
		t.Fatalf("unexpected body %q", msg.PlainBody)
	}
	if !strings.Contains(msg.HTMLBody, "https://markethive.example.com") {
		t.Fatalf("html body missing marketplace link: %q", msg.HTMLBody)
	}
}

func TestAdminCredentialsMessage(t *testing.T) {
	msg := AdminCredentialsMessage(testSite(), "margaret", "margaret@example.com", "temp-pass-9")

	if msg.Subject != "YOUR ADMIN ACCOUNT FOR MARKETHIVE" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.PlainBody, "temp-pass-9") {
		t.Fatalf("plain body missing temp password: %q", msg.PlainBody)
	}
	if !strings.Contains(msg.PlainBody, "margaret@example.com") {
		t.Fatalf("plain body missing email: %q", msg.PlainBody)
	}
	if msg.HTMLBody != "" {
		t.Fatalf("admin credentials email should be plain text only, got %q", msg.HTMLBody)
	}
}
