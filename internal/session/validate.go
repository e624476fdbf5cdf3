package session

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/mtkebuch/skincareWeb/pkg/errors"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern    = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`[0-9]`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*]`)
)

// ValidateEmail checks that email is present and shaped like an address.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return apperrors.InvalidInput("Email is required")
	}
	if !emailPattern.MatchString(email) {
		return apperrors.InvalidInput("Please enter a valid email address")
	}
	return nil
}

// ValidatePassword enforces the password policy: at least 8 characters with
// an uppercase letter, a lowercase letter, a digit, and one of !@#$%^&*.
func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return apperrors.InvalidInput("Password is required")
	}
	if len(password) < 8 {
		return apperrors.InvalidInput("Password must be at least 8 characters long")
	}
	if !upperPattern.MatchString(password) {
		return apperrors.InvalidInput("Password must contain at least one uppercase letter")
	}
	if !lowerPattern.MatchString(password) {
		return apperrors.InvalidInput("Password must contain at least one lowercase letter")
	}
	if !digitPattern.MatchString(password) {
		return apperrors.InvalidInput("Password must contain at least one number")
	}
	if !specialPattern.MatchString(password) {
		return apperrors.InvalidInput("Password must contain at least one special character (!@#$%^&*)")
	}
	return nil
}

// ValidateName checks a person name: present, at least 2 characters, letters
// and spaces only. fieldName appears in the message, e.g. "First name".
func ValidateName(name, fieldName string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.InvalidInput(fmt.Sprintf("%s is required", fieldName))
	}
	if len(name) < 2 {
		return apperrors.InvalidInput(fmt.Sprintf("%s must be at least 2 characters long", fieldName))
	}
	if !namePattern.MatchString(name) {
		return apperrors.InvalidInput(fmt.Sprintf("%s can only contain letters", fieldName))
	}
	return nil
}
