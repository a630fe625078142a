package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
)

const (
	adminListLimit          = 200
	maxWarningMessageLength = 2000
	defaultModerationAuthor = "User"
)

var (
	ErrAdminSelfDelete        = errors.New("Cannot delete your own account")
	ErrWarningMessageRequired = errors.New("Warning message is required")
	ErrWarningMessageTooLong  = errors.New("warning message is too long")
)

// AdminPolicy is the e-mail allow-list that grants admin access.
type AdminPolicy struct {
	emails map[string]struct{}
}

func NewAdminPolicy(emails map[string]struct{}) AdminPolicy {
	normalized := make(map[string]struct{}, len(emails))
	for email := range emails {
		normalized[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
	}
	return AdminPolicy{emails: normalized}
}

func (policy AdminPolicy) IsAdmin(email string) bool {
	if len(policy.emails) == 0 {
		return false
	}
	_, ok := policy.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

func (policy AdminPolicy) Role(email string) string {
	if policy.IsAdmin(email) {
		return models.RoleAdmin
	}
	return models.RoleMember
}

type WarningMailer interface {
	SendWarning(ctx context.Context, to string, name string, message string) error
}

type AdminUserRepository interface {
	FindByID(userID uint) (models.User, error)
	ListNewest(limit int) ([]models.User, error)
	IncrementWarningCount(userID uint) error
	DeleteAccountAndRelatedData(userID uint) error
}

type AdminPostRepository interface {
	ListForModeration(limit int) ([]models.Post, error)
	Delete(postID uint) error
}

type AdminUserView struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	Role      string    `json:"role"`
	Warnings  int       `json:"warnings"`
}

type AdminPostView struct {
	ID          uint      `json:"id"`
	Body        string    `json:"body"`
	Likes       int       `json:"likes"`
	CreatedAt   time.Time `json:"createdAt"`
	Author      string    `json:"author"`
	AuthorEmail string    `json:"authorEmail,omitempty"`
}

type AdminService struct {
	policy AdminPolicy
	users  AdminUserRepository
	posts  AdminPostRepository
	mailer WarningMailer
}

func NewAdminService(policy AdminPolicy, users AdminUserRepository, posts AdminPostRepository, mailer WarningMailer) *AdminService {
	return &AdminService{policy: policy, users: users, posts: posts, mailer: mailer}
}

func (service *AdminService) Policy() AdminPolicy {
	return service.policy
}

func (service *AdminService) ListUsers() ([]AdminUserView, error) {
	users, err := service.users.ListNewest(adminListLimit)
	if err != nil {
		return nil, err
	}
	views := make([]AdminUserView, 0, len(users))
	for _, user := range users {
		views = append(views, AdminUserView{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Username:  user.Username,
			CreatedAt: user.CreatedAt,
			Role:      service.policy.Role(user.Email),
			Warnings:  user.WarningCount,
		})
	}
	return views, nil
}

func (service *AdminService) DeleteUser(actorID uint, targetID uint) error {
	if actorID == targetID {
		return ErrAdminSelfDelete
	}
	err := service.users.DeleteAccountAndRelatedData(targetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

// WarnUser e-mails the warning and records it on the account.
func (service *AdminService) WarnUser(ctx context.Context, targetID uint, rawMessage string) (models.User, error) {
	message := strings.TrimSpace(rawMessage)
	if message == "" {
		return models.User{}, ErrWarningMessageRequired
	}
	if len([]rune(message)) > maxWarningMessageLength {
		return models.User{}, ErrWarningMessageTooLong
	}

	user, err := service.users.FindByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	if service.mailer != nil {
		if err := service.mailer.SendWarning(ctx, user.Email, user.Name, message); err != nil {
			return models.User{}, fmt.Errorf("send warning: %w", err)
		}
	}
	if err := service.users.IncrementWarningCount(targetID); err != nil {
		return models.User{}, err
	}
	user.WarningCount++
	return user, nil
}

func (service *AdminService) ListPosts() ([]AdminPostView, error) {
	posts, err := service.posts.ListForModeration(adminListLimit)
	if err != nil {
		return nil, err
	}
	views := make([]AdminPostView, 0, len(posts))
	for _, post := range posts {
		views = append(views, AdminPostView{
			ID:          post.ID,
			Body:        post.Body,
			Likes:       post.Likes,
			CreatedAt:   post.CreatedAt,
			Author:      moderationAuthor(post.User),
			AuthorEmail: post.User.Email,
		})
	}
	return views, nil
}

func moderationAuthor(user models.User) string {
	for _, candidate := range []string{user.Username, user.Name, user.Email} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return defaultModerationAuthor
}

func (service *AdminService) DeletePost(postID uint) error {
	err := service.posts.Delete(postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPostNotFound
	}
	return err
}
