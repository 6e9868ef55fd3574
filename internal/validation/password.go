// Package validation provides input validation utilities
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PasswordPolicy lists what an account password must contain. Lengths are
// counted in characters, not bytes.
type PasswordPolicy struct {
	MinLength     int
	MaxLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

// DefaultPasswordPolicy applies to registration and the bootstrap admin.
var DefaultPasswordPolicy = PasswordPolicy{
	MinLength:     12,
	MaxLength:     128,
	RequireUpper:  true,
	RequireLower:  true,
	RequireDigit:  true,
	RequireSymbol: true,
}

// ValidatePassword checks password against DefaultPasswordPolicy.
func ValidatePassword(password string) error {
	return DefaultPasswordPolicy.Check(password)
}

// Check reports the first length problem, or else every missing character class.
func (p PasswordPolicy) Check(password string) error {
	if !utf8.ValidString(password) {
		return errors.New("password must be valid UTF-8")
	}
	n := utf8.RuneCountInString(password)
	if n < p.MinLength {
		return fmt.Errorf("password must be at least %d characters long", p.MinLength)
	}
	if p.MaxLength > 0 && n > p.MaxLength {
		return fmt.Errorf("password must not exceed %d characters", p.MaxLength)
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	var missing []string
	if p.RequireUpper && !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if p.RequireLower && !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	if p.RequireDigit && !hasDigit {
		missing = append(missing, "a digit")
	}
	if p.RequireSymbol && !hasSymbol {
		missing = append(missing, "a symbol such as !@#$%")
	}
	if len(missing) > 0 {
		return fmt.Errorf("password must contain %s", strings.Join(missing, ", "))
	}
	return nil
}
