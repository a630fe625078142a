package services

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/terraincognita07/bitebalance/internal/models"
	"github.com/terraincognita07/bitebalance/internal/nutrition"
	"github.com/terraincognita07/bitebalance/internal/security"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrNameRequired       = errors.New("name is required")
	ErrEmailInvalid       = errors.New("invalid email")
	ErrUsernameInvalid    = errors.New("username must be 3-32 letters, digits, dots, dashes or underscores")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrEmailTaken         = errors.New("email already in use")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

const (
	generatedUsernamePrefix   = "user-"
	generatedUsernameAlphabet = "abcdefghijkmnpqrstuvwxyz23456789"
	generatedUsernameAttempts = 5
)

type AuthUserRepository interface {
	ExistsByNormalizedEmail(email string) (bool, error)
	ExistsByUsername(username string) (bool, error)
	FindByNormalizedEmail(email string) (models.User, error)
	FindByID(userID uint) (models.User, error)
	CreateWithProfile(user *models.User, profile *models.Profile) error
	BumpSessionVersion(userID uint) (int, error)
}

type Registration struct {
	Name            string
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Profile         ProfileUpdate
}

type RegistrationResult struct {
	User     models.User
	Profile  *models.Profile
	Estimate *nutrition.EstimateResult
}

type AuthService struct {
	users   AuthUserRepository
	profile *ProfilePolicy
}

func NewAuthService(users AuthUserRepository, profile *ProfilePolicy) *AuthService {
	if profile == nil {
		profile = NewProfilePolicy(nutrition.DefaultPolicy, nil)
	}
	return &AuthService{users: users, profile: profile}
}

func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrEmailInvalid
	}
	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return "", ErrEmailInvalid
	}
	return email, nil
}

// Register creates the account. Profile fields are optional; when any is
// present they are validated and, once all six estimator inputs are known,
// the daily target is computed and stored with the account.
func (service *AuthService) Register(input Registration, now time.Time) (RegistrationResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return RegistrationResult{}, ErrNameRequired
	}
	email, err := NormalizeEmail(input.Email)
	if err != nil {
		return RegistrationResult{}, err
	}
	if input.Password != input.ConfirmPassword {
		return RegistrationResult{}, ErrPasswordMismatch
	}
	if err := ValidatePasswordStrength(input.Password); err != nil {
		return RegistrationResult{}, err
	}

	emailTaken, err := service.users.ExistsByNormalizedEmail(email)
	if err != nil {
		return RegistrationResult{}, err
	}
	if emailTaken {
		return RegistrationResult{}, ErrEmailTaken
	}

	username, err := service.resolveUsername(input.Username)
	if err != nil {
		return RegistrationResult{}, err
	}

	var profile *models.Profile
	var estimate *nutrition.EstimateResult
	if !input.Profile.IsEmpty() {
		draft := models.Profile{}
		estimate, err = service.profile.Apply(&draft, input.Profile)
		if err != nil {
			return RegistrationResult{}, err
		}
		draft.OnboardingCompleted = estimate != nil
		profile = &draft
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		Username:     username,
		Name:         name,
		PasswordHash: string(passwordHash),
		CreatedAt:    now.UTC(),
	}
	if err := service.users.CreateWithProfile(&user, profile); err != nil {
		return RegistrationResult{}, err
	}

	return RegistrationResult{User: user, Profile: profile, Estimate: estimate}, nil
}

func (service *AuthService) resolveUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	if username != "" {
		if !usernamePattern.MatchString(username) {
			return "", ErrUsernameInvalid
		}
		taken, err := service.users.ExistsByUsername(username)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrUsernameTaken
		}
		return username, nil
	}

	for attempt := 0; attempt < generatedUsernameAttempts; attempt++ {
		suffix, err := security.RandomString(6, generatedUsernameAlphabet)
		if err != nil {
			return "", fmt.Errorf("generate username: %w", err)
		}
		candidate := generatedUsernamePrefix + suffix
		taken, err := service.users.ExistsByUsername(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrUsernameTaken
}

// Authenticate checks credentials without revealing which part was wrong.
func (service *AuthService) Authenticate(rawEmail string, password string) (models.User, error) {
	email, err := NormalizeEmail(rawEmail)
	if err != nil || password == "" {
		return models.User{}, ErrInvalidCredentials
	}

	user, err := service.users.FindByNormalizedEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// RevokeSessions invalidates every issued token and returns the new version.
func (service *AuthService) RevokeSessions(userID uint) (int, error) {
	version, err := service.users.BumpSessionVersion(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrUserNotFound
	}
	return version, err
}
