// Package nutrition computes daily energy targets with the Mifflin-St Jeor
// equation and derives macro goals from them. Everything here is pure.
package nutrition

import "math"

const (
	DefaultGainOffset    = 300
	LoseOffset           = -500
	MaxGainOffset        = 1000
	MinimumDailyCalories = 1
)

// Policy carries the tunable goal adjustment. The zero value is not useful;
// start from DefaultPolicy.
type Policy struct {
	GainOffset int
}

var DefaultPolicy = Policy{GainOffset: DefaultGainOffset}

type MacroGoals struct {
	ProteinGrams int `json:"proteinGrams"`
	FatGrams     int `json:"fatGrams"`
	CarbGrams    int `json:"carbGrams"`
}

type EstimateResult struct {
	BMR           float64    `json:"bmr"`
	TDEE          float64    `json:"tdee"`
	DailyCalories int        `json:"dailyCalories"`
	Clamped       bool       `json:"clamped,omitempty"`
	Macros        MacroGoals `json:"macroGoals"`
}

// EstimateDailyCalories runs DefaultPolicy and returns only the rounded target.
func EstimateDailyCalories(inputs ProfileInputs) (int, error) {
	result, err := DefaultPolicy.Estimate(inputs)
	if err != nil {
		return 0, err
	}
	return result.DailyCalories, nil
}

func (policy Policy) Estimate(inputs ProfileInputs) (EstimateResult, error) {
	if err := inputs.Validate(); err != nil {
		return EstimateResult{}, err
	}

	bmr := BasalMetabolicRate(inputs)
	tdee := bmr * inputs.ActivityLevel.Multiplier()
	target := math.Round(tdee + float64(policy.GoalOffset(inputs.Goal)))

	result := EstimateResult{
		BMR:  roundTo(bmr, 2),
		TDEE: roundTo(tdee, 2),
	}
	if target < MinimumDailyCalories {
		target = MinimumDailyCalories
		result.Clamped = true
	}
	result.DailyCalories = int(target)
	result.Macros = SplitMacros(result.DailyCalories)
	return result, nil
}

// BasalMetabolicRate does not validate; callers go through Estimate.
func BasalMetabolicRate(inputs ProfileInputs) float64 {
	bmr := 10*inputs.WeightKg + 6.25*inputs.HeightCm - 5*float64(inputs.AgeYears)
	return bmr + inputs.Sex.bmrOffset()
}

// GoalOffset returns the additive kcal adjustment. Unknown goals get 0.
func (policy Policy) GoalOffset(goal Goal) int {
	switch goal {
	case GoalLose:
		return LoseOffset
	case GoalGain:
		return policy.GainOffset
	default:
		return 0
	}
}

func roundTo(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
