package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	parley_errors "parley/pkg/errors"

	"github.com/nyaruka/phonenumbers"
)

var (
	phoneNoise = regexp.MustCompile(`[\s\-().]`)

	// Character classes checked one by one; Go's regexp has no lookahead.
	hasDigit   = regexp.MustCompile(`[0-9]`)
	hasLower   = regexp.MustCompile(`[a-z]`)
	hasUpper   = regexp.MustCompile(`[A-Z]`)
	hasSpecial = regexp.MustCompile("[!@#$%^&*()_+\\-={}\\[\\]|\\\\:;\"'<>,.?/~`]")
)

// Name trims and requires at least one character. Returns the trimmed value.
func Name(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: name must contain at least one character", parley_errors.ErrInvalidInput)
	}
	return trimmed, nil
}

func Email(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, ".") {
		return fmt.Errorf("%w: invalid email format", parley_errors.ErrInvalidInput)
	}
	return nil
}

// Phone strips separators and parses the remainder as an international
// number. Numbers without a country code are rejected.
func Phone(phone string) error {
	cleaned := phoneNoise.ReplaceAllString(phone, "")
	num, err := phonenumbers.Parse(cleaned, "")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return fmt.Errorf("%w: invalid phone number", parley_errors.ErrInvalidInput)
	}
	return nil
}

// Password enforces 8-20 characters with at least one digit, one lowercase,
// one uppercase and one special character.
func Password(password string) error {
	if len(password) < 8 || len(password) > 20 ||
		!hasDigit.MatchString(password) ||
		!hasLower.MatchString(password) ||
		!hasUpper.MatchString(password) ||
		!hasSpecial.MatchString(password) {
		return fmt.Errorf("%w: password must include uppercase, lowercase, digit, special character and be 8-20 characters", parley_errors.ErrInvalidInput)
	}
	return nil
}
