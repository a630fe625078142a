package services

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPlanNameRequired = errors.New("planName is required")
	ErrPlanNotFound     = errors.New("plan not found")
)

type SubscriptionRepository interface {
	ListPlans() ([]models.SubscriptionPlan, error)
	FindPlanByName(name string) (models.SubscriptionPlan, error)
	FindActive(userID uint) (models.Subscription, error)
	Switch(userID uint, planID uint, now time.Time) (models.Subscription, error)
}

type SubscriptionOverview struct {
	Plans   []models.SubscriptionPlan `json:"plans"`
	Current *models.Subscription      `json:"current"`
}

type SubscriptionService struct {
	subscriptions SubscriptionRepository
}

func NewSubscriptionService(subscriptions SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{subscriptions: subscriptions}
}

// Overview lists the plans; Current is only resolved for a signed-in user.
func (service *SubscriptionService) Overview(userID uint) (SubscriptionOverview, error) {
	plans, err := service.subscriptions.ListPlans()
	if err != nil {
		return SubscriptionOverview{}, err
	}
	overview := SubscriptionOverview{Plans: plans}
	if userID == 0 {
		return overview, nil
	}

	current, err := service.subscriptions.FindActive(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return overview, nil
		}
		return SubscriptionOverview{}, err
	}
	overview.Current = &current
	return overview, nil
}

// Subscribe cancels the active subscription, if any, and starts the named plan.
func (service *SubscriptionService) Subscribe(userID uint, planName string, now time.Time) (models.Subscription, error) {
	name := strings.TrimSpace(planName)
	if name == "" {
		return models.Subscription{}, ErrPlanNameRequired
	}
	plan, err := service.subscriptions.FindPlanByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Subscription{}, ErrPlanNotFound
		}
		return models.Subscription{}, err
	}
	return service.subscriptions.Switch(userID, plan.ID, now.UTC())
}
