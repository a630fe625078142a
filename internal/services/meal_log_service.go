package services

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
)

const (
	mealLogListLimit = 50
	maxMealQuantity  = 100
)

var (
	ErrMealLogNotFound     = errors.New("meal log not found")
	ErrMealLogForbidden    = errors.New("not allowed to delete this meal log")
	ErrMealTypeInvalid     = errors.New("mealType must be one of: Breakfast, Lunch, Dinner, Snack")
	ErrMealQuantityInvalid = errors.New("quantity must be greater than 0")
	ErrMealLogFoodRequired = errors.New("foodId is required")
)

type FoodLogRepository interface {
	ListRecent(userID uint, limit int) ([]models.FoodLog, error)
	FindByID(logID uint) (models.FoodLog, error)
	Create(entry *models.FoodLog) error
	Delete(logID uint) error
}

type MealLogObserver interface {
	ObserveMealLog(mealType string)
}

type MealLogInput struct {
	FoodID   uint
	Quantity float64
	MealType string
}

type MealLogService struct {
	logs     FoodLogRepository
	foods    FoodRepository
	observer MealLogObserver
}

func NewMealLogService(logs FoodLogRepository, foods FoodRepository, observer MealLogObserver) *MealLogService {
	return &MealLogService{logs: logs, foods: foods, observer: observer}
}

// NormalizeMealType maps any casing of the four meal names to the stored form.
func NormalizeMealType(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "breakfast":
		return models.MealBreakfast, nil
	case "lunch":
		return models.MealLunch, nil
	case "dinner":
		return models.MealDinner, nil
	case "snack":
		return models.MealSnack, nil
	default:
		return "", ErrMealTypeInvalid
	}
}

func (service *MealLogService) List(userID uint) ([]models.FoodLog, error) {
	return service.logs.ListRecent(userID, mealLogListLimit)
}

func (service *MealLogService) Create(userID uint, input MealLogInput, now time.Time) (models.FoodLog, error) {
	if input.FoodID == 0 {
		return models.FoodLog{}, ErrMealLogFoodRequired
	}
	if math.IsNaN(input.Quantity) || input.Quantity <= 0 || input.Quantity > maxMealQuantity {
		return models.FoodLog{}, ErrMealQuantityInvalid
	}
	mealType, err := NormalizeMealType(input.MealType)
	if err != nil {
		return models.FoodLog{}, err
	}

	if _, err := service.foods.FindByID(input.FoodID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.FoodLog{}, ErrFoodNotFound
		}
		return models.FoodLog{}, err
	}

	entry := models.FoodLog{
		UserID:   userID,
		FoodID:   input.FoodID,
		Quantity: input.Quantity,
		MealType: mealType,
		LoggedAt: now.UTC(),
	}
	if err := service.logs.Create(&entry); err != nil {
		return models.FoodLog{}, err
	}
	if service.observer != nil {
		service.observer.ObserveMealLog(mealType)
	}
	return entry, nil
}

func (service *MealLogService) Delete(userID uint, logID uint) error {
	entry, err := service.logs.FindByID(logID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMealLogNotFound
		}
		return err
	}
	if entry.UserID != userID {
		return ErrMealLogForbidden
	}
	return service.logs.Delete(logID)
}
