package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
)

const (
	DefaultFoodPageLimit = 50
	MaxFoodPageLimit     = 100
	maxFoodNameLength    = 200

	foodCacheGenerationKey = "foods:generation"
	foodCacheSearchPrefix  = "foods:search:"
)

var (
	ErrFoodNotFound        = errors.New("food not found")
	ErrFoodNameRequired    = errors.New("food name is required")
	ErrFoodNameTooLong     = errors.New("food name is too long")
	ErrFoodValuesInvalid   = errors.New("calories and macros must be non-negative numbers")
	ErrFoodExists          = errors.New("Food with this name already exists")
	ErrFoodSearchPageRange = errors.New("page must be at least 1")
	ErrFoodSearchLimit     = errors.New("limit must be between 1 and 100")
)

type FoodRepository interface {
	Search(query models.FoodQuery) ([]models.Food, int64, error)
	FindByID(foodID uint) (models.Food, error)
	ExistsByName(name string) (bool, error)
	Create(food *models.Food) error
	CreateMissing(foods []models.Food) (int64, error)
}

// FoodCache stores serialized search pages. Entries expire on the cache's
// own TTL; writes bump a generation counter so stale pages are never read.
type FoodCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Incr(ctx context.Context, key string) (int64, error)
}

type FoodCacheObserver interface {
	ObserveFoodCache(hit bool)
}

type FoodSearchParams struct {
	Text        string   `json:"q"`
	Source      string   `json:"source"`
	MinCalories *float64 `json:"minCalories"`
	MinProtein  *float64 `json:"minProtein"`
	MinCarbs    *float64 `json:"minCarbs"`
	MinFat      *float64 `json:"minFat"`
	Page        int      `json:"page"`
	Limit       int      `json:"limit"`
}

type FoodPage struct {
	Items []models.Food `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

type FoodInput struct {
	Name     string
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Fiber    float64
	Source   string
}

type SeedResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type FoodService struct {
	foods    FoodRepository
	cache    FoodCache
	observer FoodCacheObserver
	log      logrus.FieldLogger
}

func NewFoodService(foods FoodRepository, cache FoodCache, observer FoodCacheObserver) *FoodService {
	return &FoodService{foods: foods, cache: cache, observer: observer, log: logrus.StandardLogger()}
}

func (service *FoodService) WithLogger(log logrus.FieldLogger) *FoodService {
	if log != nil {
		service.log = log
	}
	return service
}

// NormalizeFoodSearch applies the paging defaults and rejects values outside
// the allowed window.
func NormalizeFoodSearch(params FoodSearchParams) (FoodSearchParams, error) {
	params.Text = strings.TrimSpace(params.Text)
	params.Source = strings.ToLower(strings.TrimSpace(params.Source))
	if params.Page == 0 {
		params.Page = 1
	}
	if params.Page < 1 {
		return FoodSearchParams{}, ErrFoodSearchPageRange
	}
	if params.Limit == 0 {
		params.Limit = DefaultFoodPageLimit
	}
	if params.Limit < 1 || params.Limit > MaxFoodPageLimit {
		return FoodSearchParams{}, ErrFoodSearchLimit
	}
	return params, nil
}

func (service *FoodService) Search(ctx context.Context, params FoodSearchParams) (FoodPage, error) {
	normalized, err := NormalizeFoodSearch(params)
	if err != nil {
		return FoodPage{}, err
	}

	cacheKey := service.searchCacheKey(ctx, normalized)
	if cacheKey != "" {
		if page, ok := service.readCachedPage(ctx, cacheKey); ok {
			return page, nil
		}
	}

	items, total, err := service.foods.Search(models.FoodQuery{
		Text:        normalized.Text,
		Source:      normalized.Source,
		MinCalories: normalized.MinCalories,
		MinProtein:  normalized.MinProtein,
		MinCarbs:    normalized.MinCarbs,
		MinFat:      normalized.MinFat,
		Offset:      (normalized.Page - 1) * normalized.Limit,
		Limit:       normalized.Limit,
	})
	if err != nil {
		return FoodPage{}, fmt.Errorf("search foods: %w", err)
	}

	page := FoodPage{Items: items, Total: total, Page: normalized.Page, Limit: normalized.Limit}
	if cacheKey != "" {
		if encoded, err := json.Marshal(page); err == nil {
			_ = service.cache.Set(ctx, cacheKey, encoded)
		}
	}
	return page, nil
}

// Cache failures fall through to the database.
func (service *FoodService) searchCacheKey(ctx context.Context, params FoodSearchParams) string {
	if service.cache == nil {
		return ""
	}
	generation := int64(0)
	raw, found, err := service.cache.Get(ctx, foodCacheGenerationKey)
	if err != nil {
		return ""
	}
	if found {
		parsed, parseErr := strconv.ParseInt(string(raw), 10, 64)
		if parseErr != nil {
			return ""
		}
		generation = parsed
	}

	encoded, err := json.Marshal(params)
	if err != nil {
		return ""
	}
	return foodCacheSearchPrefix + strconv.FormatInt(generation, 10) + ":" + string(encoded)
}

func (service *FoodService) readCachedPage(ctx context.Context, key string) (FoodPage, bool) {
	raw, found, err := service.cache.Get(ctx, key)
	if err != nil || !found {
		service.observeCache(false)
		return FoodPage{}, false
	}
	var page FoodPage
	if err := json.Unmarshal(raw, &page); err != nil {
		service.observeCache(false)
		return FoodPage{}, false
	}
	service.observeCache(true)
	return page, true
}

func (service *FoodService) observeCache(hit bool) {
	if service.observer != nil {
		service.observer.ObserveFoodCache(hit)
	}
}

func (service *FoodService) invalidateCache(ctx context.Context) {
	if service.cache == nil {
		return
	}
	if _, err := service.cache.Incr(ctx, foodCacheGenerationKey); err != nil {
		service.log.WithError(err).Warn("food cache invalidation failed")
	}
}

func (service *FoodService) FindByID(foodID uint) (models.Food, error) {
	food, err := service.foods.FindByID(foodID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Food{}, ErrFoodNotFound
	}
	return food, err
}

func ValidateFoodInput(input FoodInput) (models.Food, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Food{}, ErrFoodNameRequired
	}
	if len([]rune(name)) > maxFoodNameLength {
		return models.Food{}, ErrFoodNameTooLong
	}
	for _, value := range []float64{input.Calories, input.Protein, input.Carbs, input.Fat, input.Fiber} {
		if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
			return models.Food{}, ErrFoodValuesInvalid
		}
	}

	source := strings.ToLower(strings.TrimSpace(input.Source))
	if source == "" {
		source = models.FoodSourceAdmin
	}
	return models.Food{
		Name:     name,
		Calories: input.Calories,
		Protein:  input.Protein,
		Carbs:    input.Carbs,
		Fat:      input.Fat,
		Fiber:    input.Fiber,
		Source:   source,
	}, nil
}

func (service *FoodService) CreateFood(ctx context.Context, input FoodInput, now time.Time) (models.Food, error) {
	food, err := ValidateFoodInput(input)
	if err != nil {
		return models.Food{}, err
	}

	exists, err := service.foods.ExistsByName(food.Name)
	if err != nil {
		return models.Food{}, err
	}
	if exists {
		return models.Food{}, ErrFoodExists
	}

	food.CreatedAt = now.UTC()
	if err := service.foods.Create(&food); err != nil {
		return models.Food{}, err
	}
	service.invalidateCache(ctx)
	return food, nil
}

// SeedCatalog inserts catalog entries whose names are not stored yet.
func (service *FoodService) SeedCatalog(ctx context.Context, foods []models.Food) (SeedResult, error) {
	if len(foods) == 0 {
		return SeedResult{}, nil
	}
	created, err := service.foods.CreateMissing(foods)
	if err != nil {
		return SeedResult{}, fmt.Errorf("seed foods: %w", err)
	}
	if created > 0 {
		service.invalidateCache(ctx)
	}
	return SeedResult{Created: int(created), Skipped: len(foods) - int(created)}, nil
}
