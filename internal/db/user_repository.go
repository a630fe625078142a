package db

import (
	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) CountUsers() (int64, error) {
	var count int64
	if err := repo.database.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *UserRepository) FindByID(userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByNormalizedEmail(email string) (models.User, error) {
	var user models.User
	if err := repo.database.Where("lower(email) = ?", email).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) ExistsByNormalizedEmail(email string) (bool, error) {
	return repo.exists("lower(email) = ?", email)
}

func (repo *UserRepository) ExistsByUsername(username string) (bool, error) {
	return repo.exists("lower(username) = lower(?)", username)
}

func (repo *UserRepository) exists(condition string, value string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).Where(condition, value).Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) Create(user *models.User) error {
	return repo.database.Create(user).Error
}

// CreateWithProfile stores a new account and its first profile atomically.
func (repo *UserRepository) CreateWithProfile(user *models.User, profile *models.Profile) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if profile == nil {
			return nil
		}
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
}

func (repo *UserRepository) UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"password_hash":        passwordHash,
		"must_change_password": mustChangePassword,
	}).Error
}

func (repo *UserRepository) UpdateName(userID uint, name string) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Update("name", name).Error
}

// UpdateNameWithProfile renames the user and upserts the profile in one
// transaction.
func (repo *UserRepository) UpdateNameWithProfile(userID uint, name string, profile *models.Profile) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("name", name).Error; err != nil {
			return err
		}
		profile.UserID = userID
		return upsertProfile(tx, profile)
	})
}

// BumpSessionVersion invalidates every token issued before the call.
func (repo *UserRepository) BumpSessionVersion(userID uint) (int, error) {
	result := repo.database.Model(&models.User{}).
		Where("id = ?", userID).
		Update("session_version", gorm.Expr("session_version + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	user, err := repo.FindByID(userID)
	if err != nil {
		return 0, err
	}
	return user.SessionVersion, nil
}

func (repo *UserRepository) IncrementWarningCount(userID uint) error {
	return repo.database.Model(&models.User{}).
		Where("id = ?", userID).
		Update("warning_count", gorm.Expr("warning_count + 1")).Error
}

func (repo *UserRepository) ListNewest(limit int) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := repo.database.Order("created_at DESC, id DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *UserRepository) ListIDs() ([]uint, error) {
	ids := make([]uint, 0)
	if err := repo.database.Model(&models.User{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteAccountAndRelatedData removes the user and everything they own.
// Rows are deleted explicitly so SQLite without foreign keys behaves the same.
func (repo *UserRepository) DeleteAccountAndRelatedData(userID uint) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		postIDs := tx.Model(&models.Post{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("post_id IN (?)", postIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		owned := []any{
			&models.Comment{},
			&models.Post{},
			&models.FoodLog{},
			&models.UserChallenge{},
			&models.Subscription{},
			&models.MealPlan{},
			&models.Profile{},
		}
		for _, model := range owned {
			if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&models.User{}, userID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
