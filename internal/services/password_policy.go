package services

import (
	"errors"
	"unicode"
)

// bcrypt ignores input past 72 bytes.
const maxPasswordBytes = 72

var (
	ErrWeakPassword    = errors.New("weak password")
	ErrPasswordTooLong = errors.New("password is too long")
)

// ValidatePasswordStrength requires 8+ characters with upper, lower and digit.
func ValidatePasswordStrength(password string) error {
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	if len([]rune(password)) < 8 {
		return ErrWeakPassword
	}

	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}

	if hasUpper && hasLower && hasDigit {
		return nil
	}
	return ErrWeakPassword
}
