package db

import (
	"time"

	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
)

type FoodLogRepository struct {
	database *gorm.DB
}

func NewFoodLogRepository(database *gorm.DB) *FoodLogRepository {
	return &FoodLogRepository{database: database}
}

func (repo *FoodLogRepository) ListRecent(userID uint, limit int) ([]models.FoodLog, error) {
	logs := make([]models.FoodLog, 0)
	if err := repo.database.
		Preload("Food").
		Where("user_id = ?", userID).
		Order("logged_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// ListBetween returns logs with from <= logged_at < to, oldest first.
func (repo *FoodLogRepository) ListBetween(userID uint, from time.Time, to time.Time) ([]models.FoodLog, error) {
	logs := make([]models.FoodLog, 0)
	if err := repo.database.
		Preload("Food").
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, from.UTC(), to.UTC()).
		Order("logged_at ASC, id ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (repo *FoodLogRepository) FindByID(logID uint) (models.FoodLog, error) {
	var entry models.FoodLog
	if err := repo.database.First(&entry, logID).Error; err != nil {
		return models.FoodLog{}, err
	}
	return entry, nil
}

func (repo *FoodLogRepository) Create(entry *models.FoodLog) error {
	if err := repo.database.Create(entry).Error; err != nil {
		return err
	}
	return repo.database.Preload("Food").First(entry, entry.ID).Error
}

func (repo *FoodLogRepository) Delete(logID uint) error {
	return repo.database.Delete(&models.FoodLog{}, logID).Error
}

func (repo *FoodLogRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.FoodLog{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
