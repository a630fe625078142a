package services

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
)

const (
	communityFeedLimit = 50
	MaxPostBodyLength  = 2000
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrPostBodyRequired = errors.New("body is required")
	ErrPostBodyTooLong  = errors.New("body must be at most 2000 characters")
)

type PostRepository interface {
	ListNewest(limit int, withComments bool) ([]models.Post, error)
	FindByID(postID uint) (models.Post, error)
	Create(post *models.Post) error
	IncrementLikes(postID uint) (int, error)
	CreateComment(comment *models.Comment) error
	Delete(postID uint) error
}

type CommunityService struct {
	posts PostRepository
}

func NewCommunityService(posts PostRepository) *CommunityService {
	return &CommunityService{posts: posts}
}

func normalizePostBody(raw string) (string, error) {
	body := strings.TrimSpace(raw)
	if body == "" {
		return "", ErrPostBodyRequired
	}
	if len([]rune(body)) > MaxPostBodyLength {
		return "", ErrPostBodyTooLong
	}
	return body, nil
}

func (service *CommunityService) Feed() ([]models.Post, error) {
	return service.posts.ListNewest(communityFeedLimit, true)
}

func (service *CommunityService) CreatePost(userID uint, rawBody string, now time.Time) (models.Post, error) {
	body, err := normalizePostBody(rawBody)
	if err != nil {
		return models.Post{}, err
	}
	post := models.Post{UserID: userID, Body: body, CreatedAt: now.UTC()}
	if err := service.posts.Create(&post); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

func (service *CommunityService) Like(postID uint) (int, error) {
	likes, err := service.posts.IncrementLikes(postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrPostNotFound
	}
	return likes, err
}

func (service *CommunityService) Comment(userID uint, postID uint, rawBody string, now time.Time) (models.Comment, error) {
	body, err := normalizePostBody(rawBody)
	if err != nil {
		return models.Comment{}, err
	}
	if _, err := service.posts.FindByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Comment{}, ErrPostNotFound
		}
		return models.Comment{}, err
	}

	comment := models.Comment{PostID: postID, UserID: userID, Body: body, CreatedAt: now.UTC()}
	if err := service.posts.CreateComment(&comment); err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}
