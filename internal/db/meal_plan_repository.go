package db

import (
	"time"

	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
)

type MealPlanRepository struct {
	database *gorm.DB
}

func NewMealPlanRepository(database *gorm.DB) *MealPlanRepository {
	return &MealPlanRepository{database: database}
}

// ListBetween includes both start and end days.
func (repo *MealPlanRepository) ListBetween(userID uint, start time.Time, end time.Time) ([]models.MealPlan, error) {
	plans := make([]models.MealPlan, 0)
	if err := repo.database.
		Where("user_id = ? AND date >= ? AND date < ?", userID, start.UTC(), end.AddDate(0, 0, 1).UTC()).
		Order("date ASC, id ASC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (repo *MealPlanRepository) Create(plan *models.MealPlan) error {
	return repo.database.Create(plan).Error
}
