package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
)

type stubFoodRepo struct {
	foods         []models.Food
	searchCalls   int
	lastQuery     models.FoodQuery
	createMissing []models.Food
}

func (stub *stubFoodRepo) Search(query models.FoodQuery) ([]models.Food, int64, error) {
	stub.searchCalls++
	stub.lastQuery = query
	matched := make([]models.Food, 0)
	for _, food := range stub.foods {
		if strings.Contains(strings.ToLower(food.Name), strings.ToLower(query.Text)) {
			matched = append(matched, food)
		}
	}
	total := int64(len(matched))
	if query.Offset >= len(matched) {
		return []models.Food{}, total, nil
	}
	end := query.Offset + query.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[query.Offset:end], total, nil
}

func (stub *stubFoodRepo) FindByID(foodID uint) (models.Food, error) {
	for _, food := range stub.foods {
		if food.ID == foodID {
			return food, nil
		}
	}
	return models.Food{}, gorm.ErrRecordNotFound
}

func (stub *stubFoodRepo) ExistsByName(name string) (bool, error) {
	for _, food := range stub.foods {
		if strings.EqualFold(food.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (stub *stubFoodRepo) Create(food *models.Food) error {
	food.ID = uint(len(stub.foods) + 1)
	stub.foods = append(stub.foods, *food)
	return nil
}

func (stub *stubFoodRepo) CreateMissing(foods []models.Food) (int64, error) {
	stub.createMissing = foods
	created := int64(0)
	for _, food := range foods {
		exists, _ := stub.ExistsByName(food.Name)
		if exists {
			continue
		}
		stub.foods = append(stub.foods, food)
		created++
	}
	return created, nil
}

type memoryFoodCache struct {
	values map[string][]byte
}

func newMemoryFoodCache() *memoryFoodCache {
	return &memoryFoodCache{values: map[string][]byte{}}
}

func (cache *memoryFoodCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := cache.values[key]
	return value, ok, nil
}

func (cache *memoryFoodCache) Set(_ context.Context, key string, value []byte) error {
	cache.values[key] = value
	return nil
}

func (cache *memoryFoodCache) Incr(_ context.Context, key string) (int64, error) {
	current, _ := strconv.ParseInt(string(cache.values[key]), 10, 64)
	current++
	cache.values[key] = []byte(strconv.FormatInt(current, 10))
	return current, nil
}

type cacheHits struct {
	hits   int
	misses int
}

func (observer *cacheHits) ObserveFoodCache(hit bool) {
	if hit {
		observer.hits++
		return
	}
	observer.misses++
}

func seededFoodRepo() *stubFoodRepo {
	return &stubFoodRepo{foods: []models.Food{
		{ID: 1, Name: "Adobo", Calories: 250},
		{ID: 2, Name: "Chicken Adobo", Calories: 320},
		{ID: 3, Name: "Sinigang", Calories: 150},
	}}
}

func TestNormalizeFoodSearchDefaultsAndBounds(t *testing.T) {
	params, err := NormalizeFoodSearch(FoodSearchParams{Text: "  adobo ", Source: " FNRI "})
	if err != nil {
		t.Fatalf("NormalizeFoodSearch() unexpected error: %v", err)
	}
	if params.Page != 1 || params.Limit != DefaultFoodPageLimit || params.Text != "adobo" || params.Source != "fnri" {
		t.Fatalf("unexpected normalized params: %+v", params)
	}

	if _, err := NormalizeFoodSearch(FoodSearchParams{Page: -1}); !errors.Is(err, ErrFoodSearchPageRange) {
		t.Fatalf("expected ErrFoodSearchPageRange, got %v", err)
	}
	if _, err := NormalizeFoodSearch(FoodSearchParams{Limit: 101}); !errors.Is(err, ErrFoodSearchLimit) {
		t.Fatalf("expected ErrFoodSearchLimit, got %v", err)
	}
}

func TestFoodSearchPaginates(t *testing.T) {
	repo := seededFoodRepo()
	service := NewFoodService(repo, nil, nil)

	page, err := service.Search(context.Background(), FoodSearchParams{Text: "adobo", Page: 2, Limit: 1})
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 1 || page.Items[0].Name != "Chicken Adobo" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if repo.lastQuery.Offset != 1 || repo.lastQuery.Limit != 1 {
		t.Fatalf("expected offset 1 limit 1, got %+v", repo.lastQuery)
	}
}

func TestFoodSearchUsesCacheUntilCatalogChanges(t *testing.T) {
	repo := seededFoodRepo()
	observer := &cacheHits{}
	service := NewFoodService(repo, newMemoryFoodCache(), observer)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := service.Search(ctx, FoodSearchParams{Text: "adobo"}); err != nil {
			t.Fatalf("Search() unexpected error: %v", err)
		}
	}
	if repo.searchCalls != 1 || observer.hits != 1 || observer.misses != 1 {
		t.Fatalf("expected one database search and one cache hit, got calls=%d hits=%d misses=%d", repo.searchCalls, observer.hits, observer.misses)
	}

	if _, err := service.CreateFood(ctx, FoodInput{Name: "Pork Adobo", Calories: 400}, time.Now()); err != nil {
		t.Fatalf("CreateFood() unexpected error: %v", err)
	}
	page, err := service.Search(ctx, FoodSearchParams{Text: "adobo"})
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}
	if repo.searchCalls != 2 || page.Total != 3 {
		t.Fatalf("expected fresh search after write, got calls=%d total=%d", repo.searchCalls, page.Total)
	}
}

func TestCreateFoodValidation(t *testing.T) {
	service := NewFoodService(seededFoodRepo(), nil, nil)
	ctx := context.Background()

	if _, err := service.CreateFood(ctx, FoodInput{Name: "  "}, time.Now()); !errors.Is(err, ErrFoodNameRequired) {
		t.Fatalf("expected ErrFoodNameRequired, got %v", err)
	}
	if _, err := service.CreateFood(ctx, FoodInput{Name: "Turon", Calories: -1}, time.Now()); !errors.Is(err, ErrFoodValuesInvalid) {
		t.Fatalf("expected ErrFoodValuesInvalid, got %v", err)
	}
	if _, err := service.CreateFood(ctx, FoodInput{Name: "sinigang", Calories: 100}, time.Now()); !errors.Is(err, ErrFoodExists) {
		t.Fatalf("expected ErrFoodExists, got %v", err)
	}

	food, err := service.CreateFood(ctx, FoodInput{Name: " Turon ", Calories: 180}, time.Now())
	if err != nil {
		t.Fatalf("CreateFood() unexpected error: %v", err)
	}
	if food.Name != "Turon" || food.Source != models.FoodSourceAdmin {
		t.Fatalf("expected trimmed admin food, got %+v", food)
	}
}

func TestSeedCatalogCountsSkippedEntries(t *testing.T) {
	service := NewFoodService(seededFoodRepo(), nil, nil)

	result, err := service.SeedCatalog(context.Background(), []models.Food{
		{Name: "Adobo", Calories: 250},
		{Name: "Turon", Calories: 180},
		{Name: "Halo-halo", Calories: 300},
	})
	if err != nil {
		t.Fatalf("SeedCatalog() unexpected error: %v", err)
	}
	if result.Created != 2 || result.Skipped != 1 {
		t.Fatalf("expected 2 created and 1 skipped, got %+v", result)
	}
}

func TestFindFoodByIDMapsNotFound(t *testing.T) {
	service := NewFoodService(seededFoodRepo(), nil, nil)
	if _, err := service.FindByID(99); !errors.Is(err, ErrFoodNotFound) {
		t.Fatalf("expected ErrFoodNotFound, got %v", err)
	}
}

type brokenCounterCache struct {
	*memoryFoodCache
}

func (brokenCounterCache) Incr(context.Context, string) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestCreateFoodLogsFailedCacheInvalidation(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	service := NewFoodService(seededFoodRepo(), brokenCounterCache{newMemoryFoodCache()}, nil).WithLogger(log)

	food, err := service.CreateFood(context.Background(), FoodInput{Name: "Pancit Canton", Calories: 180}, time.Now())
	if err != nil {
		t.Fatalf("expected food to be created despite cache failure, got %v", err)
	}
	if food.ID == 0 {
		t.Fatal("expected stored food id")
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry for the failed invalidation")
	}
	if entry.Level != logrus.WarnLevel {
		t.Fatalf("expected warn level, got %s", entry.Level)
	}
	if entry.Data[logrus.ErrorKey] == nil {
		t.Fatal("expected the cache error on the log entry")
	}
}
