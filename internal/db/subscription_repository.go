package db

import (
	"time"

	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	database *gorm.DB
}

func NewSubscriptionRepository(database *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{database: database}
}

func (repo *SubscriptionRepository) ListPlans() ([]models.SubscriptionPlan, error) {
	plans := make([]models.SubscriptionPlan, 0)
	if err := repo.database.Order("price_cents ASC, id ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (repo *SubscriptionRepository) FindPlanByName(name string) (models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := repo.database.Where("lower(name) = lower(?)", name).First(&plan).Error; err != nil {
		return models.SubscriptionPlan{}, err
	}
	return plan, nil
}

func (repo *SubscriptionRepository) FindActive(userID uint) (models.Subscription, error) {
	var subscription models.Subscription
	if err := repo.database.
		Preload("Plan").
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Order("started_at DESC, id DESC").
		First(&subscription).Error; err != nil {
		return models.Subscription{}, err
	}
	return subscription, nil
}

// Switch cancels any active subscription and starts a new one on planID in
// a single transaction.
func (repo *SubscriptionRepository) Switch(userID uint, planID uint, now time.Time) (models.Subscription, error) {
	subscription := models.Subscription{
		UserID:    userID,
		PlanID:    planID,
		Status:    models.SubscriptionStatusActive,
		StartedAt: now,
	}

	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Subscription{}).
			Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
			Updates(map[string]any{
				"status":  models.SubscriptionStatusCanceled,
				"ends_at": now,
			}).Error; err != nil {
			return err
		}
		if err := tx.Omit("Plan", "User").Create(&subscription).Error; err != nil {
			return err
		}
		return tx.Preload("Plan").First(&subscription, subscription.ID).Error
	})
	if err != nil {
		return models.Subscription{}, err
	}
	return subscription, nil
}
