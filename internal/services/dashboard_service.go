package services

import (
	"math"
	"time"

	"github.com/terraincognita07/bitebalance/internal/models"
	"github.com/terraincognita07/bitebalance/internal/nutrition"
)

const (
	DefaultDailyCalorieGoal = 2000
	dashboardDays           = 7
	dashboardRecentMeals    = 5
)

type DashboardLogRepository interface {
	ListRecent(userID uint, limit int) ([]models.FoodLog, error)
	ListBetween(userID uint, from time.Time, to time.Time) ([]models.FoodLog, error)
}

type NutrientTotals struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

type DashboardPoint struct {
	Date string `json:"date"`
	NutrientTotals
}

type MacroProgress struct {
	Consumed int     `json:"consumed"`
	Goal     int     `json:"goal"`
	Percent  float64 `json:"percent"`
}

type DashboardProgress struct {
	Calories MacroProgress `json:"calories"`
	Protein  MacroProgress `json:"protein"`
	Carbs    MacroProgress `json:"carbs"`
	Fat      MacroProgress `json:"fat"`
}

type RecentMeal struct {
	ID       uint      `json:"id"`
	FoodName string    `json:"foodName"`
	Calories int       `json:"calories"`
	MealType string    `json:"mealType"`
	LoggedAt time.Time `json:"loggedAt"`
}

type DashboardSummary struct {
	Points      []DashboardPoint     `json:"points"`
	Today       NutrientTotals       `json:"today"`
	DailyGoal   int                  `json:"dailyGoal"`
	MacroGoals  nutrition.MacroGoals `json:"macroGoals"`
	Progress    DashboardProgress    `json:"progress"`
	RecentMeals []RecentMeal         `json:"recentMeals"`
}

type DashboardService struct {
	logs     DashboardLogRepository
	profiles ProfileRepository
}

func NewDashboardService(logs DashboardLogRepository, profiles ProfileRepository) *DashboardService {
	return &DashboardService{logs: logs, profiles: profiles}
}

type nutrientSums struct {
	calories float64
	protein  float64
	carbs    float64
	fat      float64
}

func (sums *nutrientSums) add(entry models.FoodLog) {
	sums.calories += entry.Food.Calories * entry.Quantity
	sums.protein += entry.Food.Protein * entry.Quantity
	sums.carbs += entry.Food.Carbs * entry.Quantity
	sums.fat += entry.Food.Fat * entry.Quantity
}

func (sums nutrientSums) rounded() NutrientTotals {
	return NutrientTotals{
		Calories: int(math.Round(sums.calories)),
		Protein:  int(math.Round(sums.protein)),
		Carbs:    int(math.Round(sums.carbs)),
		Fat:      int(math.Round(sums.fat)),
	}
}

// Build aggregates the last seven local calendar days ending today.
func (service *DashboardService) Build(userID uint, now time.Time, location *time.Location) (DashboardSummary, error) {
	if location == nil {
		location = time.UTC
	}
	localNow := now.In(location)
	today := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, location)
	start := today.AddDate(0, 0, -(dashboardDays - 1))
	end := today.AddDate(0, 0, 1)

	logs, err := service.logs.ListBetween(userID, start, end)
	if err != nil {
		return DashboardSummary{}, err
	}

	keys := make([]string, 0, dashboardDays)
	byDay := make(map[string]*nutrientSums, dashboardDays)
	for offset := 0; offset < dashboardDays; offset++ {
		key := start.AddDate(0, 0, offset).Format("2006-01-02")
		keys = append(keys, key)
		byDay[key] = &nutrientSums{}
	}
	for _, entry := range logs {
		key := entry.LoggedAt.In(location).Format("2006-01-02")
		if sums, ok := byDay[key]; ok {
			sums.add(entry)
		}
	}

	points := make([]DashboardPoint, 0, dashboardDays)
	for _, key := range keys {
		points = append(points, DashboardPoint{Date: key, NutrientTotals: byDay[key].rounded()})
	}
	todayTotals := byDay[today.Format("2006-01-02")].rounded()

	dailyGoal := DefaultDailyCalorieGoal
	macroGoals := nutrition.SplitMacros(dailyGoal)
	if profile, err := service.profiles.FindByUserID(userID); err == nil && profile.HasEstimate() {
		dailyGoal = profile.DailyCalories
		macroGoals = nutrition.MacroGoals{
			ProteinGrams: profile.ProteinGrams,
			FatGrams:     profile.FatGrams,
			CarbGrams:    profile.CarbGrams,
		}
	}

	recent, err := service.logs.ListRecent(userID, dashboardRecentMeals)
	if err != nil {
		return DashboardSummary{}, err
	}
	recentMeals := make([]RecentMeal, 0, len(recent))
	for _, entry := range recent {
		recentMeals = append(recentMeals, RecentMeal{
			ID:       entry.ID,
			FoodName: entry.Food.Name,
			Calories: int(math.Round(entry.Food.Calories * entry.Quantity)),
			MealType: entry.MealType,
			LoggedAt: entry.LoggedAt,
		})
	}

	return DashboardSummary{
		Points:     points,
		Today:      todayTotals,
		DailyGoal:  dailyGoal,
		MacroGoals: macroGoals,
		Progress: DashboardProgress{
			Calories: progressOf(todayTotals.Calories, dailyGoal),
			Protein:  progressOf(todayTotals.Protein, macroGoals.ProteinGrams),
			Carbs:    progressOf(todayTotals.Carbs, macroGoals.CarbGrams),
			Fat:      progressOf(todayTotals.Fat, macroGoals.FatGrams),
		},
		RecentMeals: recentMeals,
	}, nil
}

// progressOf caps the ratio at 1 so overshooting renders as a full bar.
func progressOf(consumed int, goal int) MacroProgress {
	progress := MacroProgress{Consumed: consumed, Goal: goal}
	if goal <= 0 {
		return progress
	}
	progress.Percent = math.Min(1, float64(consumed)/float64(goal))
	progress.Percent = math.Round(progress.Percent*100) / 100
	return progress
}
