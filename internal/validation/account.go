package validation

import (
	"errors"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

// Profile field limits, in characters.
const (
	MaxNameLength     = 50
	MaxBioLength      = 160
	MaxLocationLength = 30
	MaxWebsiteLength  = 100
)

// ValidateUsername accepts 3 to 30 letters, digits or underscores.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return errors.New("username must be 3-30 characters of letters, digits or underscores")
	}
	return nil
}

// ValidateEmail accepts a bare address such as user@example.com.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, ".") {
		return errors.New("email address is invalid")
	}
	return nil
}

// ValidateWebsite accepts an empty value or an http(s) URL.
func ValidateWebsite(website string) error {
	if website == "" {
		return nil
	}
	if err := MaxLength("website", website, MaxWebsiteLength); err != nil {
		return err
	}
	u, err := url.Parse(website)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("website must be an http or https URL")
	}
	return nil
}

// MaxLength checks value is at most limit characters.
func MaxLength(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return errors.New(field + " is too long")
	}
	return nil
}
