// Package cli holds the operator commands that run next to the server binary.
package cli

import (
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/terraincognita07/bitebalance/internal/db"
	"github.com/terraincognita07/bitebalance/internal/models"
	"github.com/terraincognita07/bitebalance/internal/security"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const temporaryPasswordLength = 12

var ErrResetUserNotFound = errors.New("user not found")

type ResetUserRepository interface {
	FindByNormalizedEmail(email string) (models.User, error)
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
	BumpSessionVersion(userID uint) (int, error)
}

// RunResetPasswordCommand opens the configured database and resets the
// password of the account registered under email.
func RunResetPasswordCommand(options db.Options, email string, out io.Writer) error {
	database, err := db.Open(options)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	return ResetPassword(db.NewUserRepository(database), email, out)
}

// ResetPassword stores a temporary password, forces a change on next login
// and revokes every session issued before the reset.
func ResetPassword(users ResetUserRepository, email string, out io.Writer) error {
	normalizedEmail := strings.ToLower(strings.TrimSpace(email))
	if normalizedEmail == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(normalizedEmail); err != nil {
		return fmt.Errorf("invalid email address: %w", err)
	}

	user, err := users.FindByNormalizedEmail(normalizedEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrResetUserNotFound, normalizedEmail)
		}
		return fmt.Errorf("load user: %w", err)
	}

	temporaryPassword, err := security.TemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(temporaryPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash temporary password: %w", err)
	}

	if err := users.UpdatePassword(user.ID, string(passwordHash), true); err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	if _, err := users.BumpSessionVersion(user.ID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	fmt.Fprintf(out, "Password reset for %s\n", normalizedEmail)
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	fmt.Fprintln(out, "The user must change it on next login.")
	return nil
}
