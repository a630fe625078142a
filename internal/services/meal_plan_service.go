package services

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/bitebalance/internal/models"
)

const (
	mealPlanDateLayout     = "2006-01-02"
	maxMealPlanRangeDays   = 62
	maxMealPlanTitleLength = 200
	maxMealPlanNotesLength = 2000
)

var (
	ErrMealPlanFieldsRequired = errors.New("date, mealType, and title are required")
	ErrMealPlanDateInvalid    = errors.New("invalid date")
	ErrMealPlanRangeInvalid   = errors.New("invalid date range")
	ErrMealPlanTextTooLong    = errors.New("title or notes are too long")
)

type MealPlanRepository interface {
	ListBetween(userID uint, start time.Time, end time.Time) ([]models.MealPlan, error)
	Create(plan *models.MealPlan) error
}

type MealPlanInput struct {
	Date     string
	MealType string
	Title    string
	Notes    string
}

type MealPlanService struct {
	plans MealPlanRepository
}

func NewMealPlanService(plans MealPlanRepository) *MealPlanService {
	return &MealPlanService{plans: plans}
}

// ParsePlanDate reads a calendar day. Plans are stored at UTC midnight.
func ParsePlanDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(mealPlanDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, ErrMealPlanDateInvalid
	}
	return parsed, nil
}

// WeekRange resolves the inclusive listing window. Missing bounds default to
// Monday of the current local week and six days after the start.
func WeekRange(rawStart string, rawEnd string, now time.Time, location *time.Location) (time.Time, time.Time, error) {
	if location == nil {
		location = time.UTC
	}

	var start time.Time
	if strings.TrimSpace(rawStart) == "" {
		local := now.In(location)
		daysSinceMonday := (int(local.Weekday()) + 6) % 7
		monday := local.AddDate(0, 0, -daysSinceMonday)
		start = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := ParsePlanDate(rawStart)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = parsed
	}

	end := start.AddDate(0, 0, 6)
	if strings.TrimSpace(rawEnd) != "" {
		parsed, err := ParsePlanDate(rawEnd)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = parsed
	}

	if end.Before(start) || end.Sub(start) > maxMealPlanRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, ErrMealPlanRangeInvalid
	}
	return start, end, nil
}

func (service *MealPlanService) List(userID uint, start time.Time, end time.Time) ([]models.MealPlan, error) {
	return service.plans.ListBetween(userID, start, end)
}

func (service *MealPlanService) Create(userID uint, input MealPlanInput, now time.Time) (models.MealPlan, error) {
	title := strings.TrimSpace(input.Title)
	notes := strings.TrimSpace(input.Notes)
	if strings.TrimSpace(input.Date) == "" || strings.TrimSpace(input.MealType) == "" || title == "" {
		return models.MealPlan{}, ErrMealPlanFieldsRequired
	}
	date, err := ParsePlanDate(input.Date)
	if err != nil {
		return models.MealPlan{}, err
	}
	mealType, err := NormalizeMealType(input.MealType)
	if err != nil {
		return models.MealPlan{}, err
	}
	if len([]rune(title)) > maxMealPlanTitleLength || len([]rune(notes)) > maxMealPlanNotesLength {
		return models.MealPlan{}, ErrMealPlanTextTooLong
	}

	plan := models.MealPlan{
		UserID:    userID,
		Date:      date,
		MealType:  mealType,
		Title:     title,
		Notes:     notes,
		CreatedAt: now.UTC(),
	}
	if err := service.plans.Create(&plan); err != nil {
		return models.MealPlan{}, err
	}
	return plan, nil
}
