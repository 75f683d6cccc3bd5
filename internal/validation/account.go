// Package validation provides input validation utilities
package validation

import (
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
	maxUsernameLength = 30
	maxEmailLength    = 254
	maxTagNameLength  = 100
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	specialPattern  = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
	tagNamePattern  = regexp.MustCompile(`^[\p{L}\p{N}_-]+$`)
)

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("password must not exceed %d characters", maxPasswordLength)
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}
	if !specialPattern.MatchString(password) {
		return fmt.Errorf("password must contain at least one special character (!@#$%%^&*)")
	}

	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < minUsernameLength {
		return fmt.Errorf("username must be at least %d characters long", minUsernameLength)
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", maxUsernameLength)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}
	first, last := username[0], username[len(username)-1]
	if first == '_' || first == '-' || last == '_' || last == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > maxEmailLength {
		return fmt.Errorf("email must not exceed %d characters", maxEmailLength)
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// NormalizeTagName trims a tag name and checks it is a single word.
func NormalizeTagName(name string) (string, error) {
	name = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "#"))
	if name == "" {
		return "", fmt.Errorf("tag name is required")
	}
	if utf8.RuneCountInString(name) > maxTagNameLength {
		return "", fmt.Errorf("tag name must not exceed %d characters", maxTagNameLength)
	}
	if !tagNamePattern.MatchString(name) {
		return "", fmt.Errorf("tag %q can only contain letters, numbers, underscores, and hyphens", name)
	}
	return name, nil
}
