// Package validation checks user-supplied credentials and content fields.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minPasswordLength = 12
	maxPasswordLength = 128
	minUsernameLength = 3
	maxUsernameLength = 50
	maxEmailLength    = 254
)

var (
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	emailRegex    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)*\.[A-Za-z]{2,}$`)
)

// ValidatePassword enforces length and character-class rules.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if n > maxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", maxPasswordLength)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return errors.New("password must contain upper and lower case letters, a digit and a special character")
	}
	return nil
}

// ValidateUsername allows letters, digits, dash and underscore, not at either end.
func ValidateUsername(username string) error {
	if len(username) < minUsernameLength {
		return fmt.Errorf("username must be at least %d characters", minUsernameLength)
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", maxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("username may only contain letters, digits, '-' and '_'")
	}
	if strings.ContainsAny(username[:1], "-_") || strings.ContainsAny(username[len(username)-1:], "-_") {
		return errors.New("username cannot start or end with '-' or '_'")
	}
	if IsReservedUsername(username) {
		return fmt.Errorf("username %q is reserved", username)
	}
	return nil
}

// ValidateEmail performs a syntactic check; deliverability is not verified.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLength {
		return fmt.Errorf("email must be at most %d characters", maxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}
