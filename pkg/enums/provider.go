package enums

import "fmt"

// SignupProvider is the channel through which an account was created.
type SignupProvider string

const (
	SignupProviderEmail  SignupProvider = "email"
	SignupProviderGoogle SignupProvider = "google"
)

var validSignupProviders = []SignupProvider{
	SignupProviderEmail,
	SignupProviderGoogle,
}

func (p SignupProvider) String() string {
	return string(p)
}

func (p SignupProvider) IsValid() bool {
	for _, candidate := range validSignupProviders {
		if candidate == p {
			return true
		}
	}
	return false
}

func ParseSignupProvider(value string) (SignupProvider, error) {
	for _, candidate := range validSignupProviders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid signup provider %q", value)
}
