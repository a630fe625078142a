package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/bitebalance/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrSettingsPasswordMissing            = errors.New("password is required")
	ErrSettingsPasswordInvalid            = errors.New("password is incorrect")
	ErrSettingsPasswordChangeInvalidInput = errors.New("current, new and confirm password are required")
	ErrSettingsPasswordMismatch           = errors.New("new passwords do not match")
	ErrSettingsInvalidCurrentPassword     = errors.New("current password is incorrect")
	ErrSettingsNewPasswordMustDiffer      = errors.New("new password must differ from the current one")
	ErrSettingsWeakPassword               = errors.New("password must be at least 8 characters with upper, lower and a digit")
)

type SettingsUserRepository interface {
	FindByID(userID uint) (models.User, error)
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
	BumpSessionVersion(userID uint) (int, error)
	DeleteAccountAndRelatedData(userID uint) error
}

type SettingsService struct {
	users SettingsUserRepository
}

func NewSettingsService(users SettingsUserRepository) *SettingsService {
	return &SettingsService{users: users}
}

func (service *SettingsService) ValidatePasswordChange(passwordHash string, currentPassword string, newPassword string, confirmPassword string) error {
	currentPassword = strings.TrimSpace(currentPassword)
	newPassword = strings.TrimSpace(newPassword)
	confirmPassword = strings.TrimSpace(confirmPassword)

	if currentPassword == "" || newPassword == "" || confirmPassword == "" {
		return ErrSettingsPasswordChangeInvalidInput
	}
	if newPassword != confirmPassword {
		return ErrSettingsPasswordMismatch
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(currentPassword)) != nil {
		return ErrSettingsInvalidCurrentPassword
	}
	if currentPassword == newPassword {
		return ErrSettingsNewPasswordMustDiffer
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return ErrSettingsWeakPassword
	}
	return nil
}

// ChangePassword stores the new hash, clears the forced-change flag and
// revokes every other session. It returns the new session version.
func (service *SettingsService) ChangePassword(userID uint, currentPassword string, newPassword string, confirmPassword string) (int, error) {
	user, err := service.loadUser(userID)
	if err != nil {
		return 0, err
	}
	if err := service.ValidatePasswordChange(user.PasswordHash, currentPassword, newPassword, confirmPassword); err != nil {
		return 0, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(newPassword)), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	if err := service.users.UpdatePassword(userID, string(passwordHash), false); err != nil {
		return 0, err
	}
	return service.users.BumpSessionVersion(userID)
}

func (service *SettingsService) ValidateDeleteAccountPassword(passwordHash string, rawPassword string) error {
	password := strings.TrimSpace(rawPassword)
	if password == "" {
		return ErrSettingsPasswordMissing
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
		return ErrSettingsPasswordInvalid
	}
	return nil
}

func (service *SettingsService) DeleteAccount(userID uint, password string) error {
	user, err := service.loadUser(userID)
	if err != nil {
		return err
	}
	if err := service.ValidateDeleteAccountPassword(user.PasswordHash, password); err != nil {
		return err
	}
	return service.users.DeleteAccountAndRelatedData(userID)
}

func (service *SettingsService) loadUser(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}
