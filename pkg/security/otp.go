package security

import "fmt"

// GenerateOTP produces a numeric one-time code of the requested length.
// Codes are uniform random digits; uniqueness across users is not enforced.
func GenerateOTP(digits int) (string, error) {
	if digits <= 0 {
		return "", fmt.Errorf("digits must be positive")
	}

	code := make([]byte, digits)
	for i := 0; i < digits; i++ {
		n, err := randInt(10)
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n)
	}
	return string(code), nil
}
