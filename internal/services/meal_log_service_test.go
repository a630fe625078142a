package services

import (
	"errors"
	"testing"
	"time"

	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/gorm"
)

type stubFoodLogRepo struct {
	entries []models.FoodLog
	deleted []uint
}

func (stub *stubFoodLogRepo) ListRecent(userID uint, limit int) ([]models.FoodLog, error) {
	result := make([]models.FoodLog, 0)
	for i := len(stub.entries) - 1; i >= 0 && len(result) < limit; i-- {
		if stub.entries[i].UserID == userID {
			result = append(result, stub.entries[i])
		}
	}
	return result, nil
}

func (stub *stubFoodLogRepo) ListBetween(userID uint, from time.Time, to time.Time) ([]models.FoodLog, error) {
	result := make([]models.FoodLog, 0)
	for _, entry := range stub.entries {
		if entry.UserID == userID && !entry.LoggedAt.Before(from) && entry.LoggedAt.Before(to) {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (stub *stubFoodLogRepo) FindByID(logID uint) (models.FoodLog, error) {
	for _, entry := range stub.entries {
		if entry.ID == logID {
			return entry, nil
		}
	}
	return models.FoodLog{}, gorm.ErrRecordNotFound
}

func (stub *stubFoodLogRepo) Create(entry *models.FoodLog) error {
	entry.ID = uint(len(stub.entries) + 1)
	stub.entries = append(stub.entries, *entry)
	return nil
}

func (stub *stubFoodLogRepo) Delete(logID uint) error {
	stub.deleted = append(stub.deleted, logID)
	return nil
}

type mealTypeCounter map[string]int

func (counter mealTypeCounter) ObserveMealLog(mealType string) {
	counter[mealType]++
}

func TestNormalizeMealType(t *testing.T) {
	for raw, want := range map[string]string{
		"breakfast": models.MealBreakfast,
		" LUNCH ":   models.MealLunch,
		"Dinner":    models.MealDinner,
		"snack":     models.MealSnack,
	} {
		got, err := NormalizeMealType(raw)
		if err != nil || got != want {
			t.Fatalf("NormalizeMealType(%q) = (%q, %v), want %q", raw, got, err, want)
		}
	}
	if _, err := NormalizeMealType("brunch"); !errors.Is(err, ErrMealTypeInvalid) {
		t.Fatalf("expected ErrMealTypeInvalid, got %v", err)
	}
}

func TestCreateMealLog(t *testing.T) {
	logs := &stubFoodLogRepo{}
	counter := mealTypeCounter{}
	service := NewMealLogService(logs, seededFoodRepo(), counter)

	entry, err := service.Create(4, MealLogInput{FoodID: 1, Quantity: 1.5, MealType: "lunch"}, time.Now())
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if entry.MealType != models.MealLunch || entry.UserID != 4 || entry.Quantity != 1.5 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if counter[models.MealLunch] != 1 {
		t.Fatalf("expected observed lunch log, got %v", counter)
	}
}

func TestCreateMealLogValidation(t *testing.T) {
	service := NewMealLogService(&stubFoodLogRepo{}, seededFoodRepo(), nil)

	testCases := []struct {
		input MealLogInput
		want  error
	}{
		{input: MealLogInput{Quantity: 1, MealType: "lunch"}, want: ErrMealLogFoodRequired},
		{input: MealLogInput{FoodID: 1, Quantity: 0, MealType: "lunch"}, want: ErrMealQuantityInvalid},
		{input: MealLogInput{FoodID: 1, Quantity: 1, MealType: "brunch"}, want: ErrMealTypeInvalid},
		{input: MealLogInput{FoodID: 99, Quantity: 1, MealType: "lunch"}, want: ErrFoodNotFound},
	}
	for _, testCase := range testCases {
		if _, err := service.Create(4, testCase.input, time.Now()); !errors.Is(err, testCase.want) {
			t.Fatalf("Create(%+v): expected %v, got %v", testCase.input, testCase.want, err)
		}
	}
}

func TestDeleteMealLogChecksOwnership(t *testing.T) {
	logs := &stubFoodLogRepo{entries: []models.FoodLog{{ID: 1, UserID: 4}}}
	service := NewMealLogService(logs, seededFoodRepo(), nil)

	if err := service.Delete(5, 1); !errors.Is(err, ErrMealLogForbidden) {
		t.Fatalf("expected ErrMealLogForbidden, got %v", err)
	}
	if err := service.Delete(4, 2); !errors.Is(err, ErrMealLogNotFound) {
		t.Fatalf("expected ErrMealLogNotFound, got %v", err)
	}
	if err := service.Delete(4, 1); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if len(logs.deleted) != 1 || logs.deleted[0] != 1 {
		t.Fatalf("expected log 1 deleted, got %v", logs.deleted)
	}
}
