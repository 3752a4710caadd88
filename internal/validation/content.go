package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLength  = 300
	MaxBodyLength   = 50000
	MaxTagLength    = 50
	MaxTagsPerPost  = 10
	MaxReasonLength = 500
)

var reservedUsernames = map[string]struct{}{
	"admin":         {},
	"administrator": {},
	"root":          {},
	"system":        {},
	"guest":         {},
	"moderator":     {},
	"stackit":       {},
	"support":       {},
	"api":           {},
	"anonymous":     {},
}

// IsReservedUsername reports whether name is held back for system use.
func IsReservedUsername(name string) bool {
	_, ok := reservedUsernames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// ValidateTitle requires a non-blank title within the column size.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("title too long (max %d characters)", MaxTitleLength)
	}
	return nil
}

func ValidateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return errors.New("body is required")
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return fmt.Errorf("body too long (max %d characters)", MaxBodyLength)
	}
	return nil
}

func ValidateReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return errors.New("reason is required")
	}
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return fmt.Errorf("reason too long (max %d characters)", MaxReasonLength)
	}
	return nil
}
