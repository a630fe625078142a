package db

import (
	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
)

type PostRepository struct {
	database *gorm.DB
}

func NewPostRepository(database *gorm.DB) *PostRepository {
	return &PostRepository{database: database}
}

func selectAuthor(tx *gorm.DB) *gorm.DB {
	return tx.Select("id", "name", "username")
}

func (repo *PostRepository) ListNewest(limit int, withComments bool) ([]models.Post, error) {
	query := repo.database.Preload("User", selectAuthor)
	if withComments {
		query = query.
			Preload("Comments", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("created_at ASC, id ASC")
			}).
			Preload("Comments.User", selectAuthor)
	}

	posts := make([]models.Post, 0)
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListForModeration includes author e-mails; only admin views use it.
func (repo *PostRepository) ListForModeration(limit int) ([]models.Post, error) {
	posts := make([]models.Post, 0)
	if err := repo.database.
		Preload("User", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "name", "username", "email")
		}).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (repo *PostRepository) FindByID(postID uint) (models.Post, error) {
	var post models.Post
	if err := repo.database.First(&post, postID).Error; err != nil {
		return models.Post{}, err
	}
	return post, nil
}

func (repo *PostRepository) Create(post *models.Post) error {
	if err := repo.database.Create(post).Error; err != nil {
		return err
	}
	return repo.database.Preload("User", selectAuthor).First(post, post.ID).Error
}

func (repo *PostRepository) IncrementLikes(postID uint) (int, error) {
	result := repo.database.Model(&models.Post{}).
		Where("id = ?", postID).
		Update("likes", gorm.Expr("likes + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	post, err := repo.FindByID(postID)
	if err != nil {
		return 0, err
	}
	return post.Likes, nil
}

func (repo *PostRepository) CreateComment(comment *models.Comment) error {
	if err := repo.database.Create(comment).Error; err != nil {
		return err
	}
	return repo.database.Preload("User", selectAuthor).First(comment, comment.ID).Error
}

func (repo *PostRepository) Delete(postID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Post{}, postID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (repo *PostRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Post{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
