package nutrition

import "math"

const (
	ProteinShare = 0.30
	FatShare     = 0.30
	CarbShare    = 0.40

	KcalPerGramProtein = 4
	KcalPerGramFat     = 9
	KcalPerGramCarb    = 4
)

// SplitMacros divides a calorie target 30/30/40 into protein, fat and carb grams.
// Each macro is rounded on its own, so the re-expressed total can drift by a few kcal.
func SplitMacros(dailyCalories int) MacroGoals {
	if dailyCalories <= 0 {
		return MacroGoals{}
	}
	calories := float64(dailyCalories)
	return MacroGoals{
		ProteinGrams: int(math.Round(calories * ProteinShare / KcalPerGramProtein)),
		FatGrams:     int(math.Round(calories * FatShare / KcalPerGramFat)),
		CarbGrams:    int(math.Round(calories * CarbShare / KcalPerGramCarb)),
	}
}

// Calories re-expresses the macro grams as kcal.
func (goals MacroGoals) Calories() int {
	return goals.ProteinGrams*KcalPerGramProtein + goals.FatGrams*KcalPerGramFat + goals.CarbGrams*KcalPerGramCarb
}
