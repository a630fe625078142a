package nutrition

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baselineMale() ProfileInputs {
	return ProfileInputs{
		AgeYears:      30,
		Sex:           SexMale,
		HeightCm:      175,
		WeightKg:      70,
		ActivityLevel: ActivityModerate,
		Goal:          GoalMaintain,
	}
}

func TestEstimateDailyCaloriesConcreteScenarios(t *testing.T) {
	testCases := []struct {
		name     string
		inputs   ProfileInputs
		expected int
	}{
		{
			name:     "male moderate maintain",
			inputs:   baselineMale(),
			expected: 2556,
		},
		{
			name: "female low lose",
			inputs: ProfileInputs{
				AgeYears:      25,
				Sex:           SexFemale,
				HeightCm:      160,
				WeightKg:      55,
				ActivityLevel: ActivitySedentary,
				Goal:          GoalLose,
			},
			expected: 1017,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			calories, err := EstimateDailyCalories(testCase.inputs)
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, calories)
		})
	}
}

func TestEstimateMatchesClosedFormForModerateMaintain(t *testing.T) {
	for age := MinAgeYears; age <= MaxAgeYears; age += 9 {
		for _, weight := range []float64{45, 62.5, 80, 140} {
			for _, sex := range []Sex{SexMale, SexFemale} {
				inputs := ProfileInputs{
					AgeYears:      age,
					Sex:           sex,
					HeightCm:      170,
					WeightKg:      weight,
					ActivityLevel: ActivityModerate,
					Goal:          GoalMaintain,
				}
				offset := 5.0
				if sex == SexFemale {
					offset = -161
				}
				expected := int(math.Round((10*weight + 6.25*170 - 5*float64(age) + offset) * 1.55))
				if expected < MinimumDailyCalories {
					continue
				}

				calories, err := EstimateDailyCalories(inputs)
				require.NoError(t, err)
				assert.Equal(t, expected, calories, "age=%d weight=%v sex=%s", age, weight, sex)
			}
		}
	}
}

func TestEstimateTreatsOtherLikeFemale(t *testing.T) {
	female := baselineMale()
	female.Sex = SexFemale
	other := baselineMale()
	other.Sex = SexOther

	femaleCalories, err := EstimateDailyCalories(female)
	require.NoError(t, err)
	otherCalories, err := EstimateDailyCalories(other)
	require.NoError(t, err)

	assert.Equal(t, femaleCalories, otherCalories)
}

func TestEstimateMonotonicity(t *testing.T) {
	base := baselineMale()
	baseCalories, err := EstimateDailyCalories(base)
	require.NoError(t, err)

	heavier := base
	heavier.WeightKg++
	heavierCalories, err := EstimateDailyCalories(heavier)
	require.NoError(t, err)
	assert.Greater(t, heavierCalories, baseCalories)

	older := base
	older.AgeYears++
	olderCalories, err := EstimateDailyCalories(older)
	require.NoError(t, err)
	assert.Less(t, olderCalories, baseCalories)
}

func TestEstimateGoalAndActivityOrdering(t *testing.T) {
	estimate := func(level ActivityLevel, goal Goal) int {
		inputs := baselineMale()
		inputs.ActivityLevel = level
		inputs.Goal = goal
		calories, err := EstimateDailyCalories(inputs)
		require.NoError(t, err)
		return calories
	}

	assert.Less(t, estimate(ActivityModerate, GoalLose), estimate(ActivityModerate, GoalMaintain))
	assert.Less(t, estimate(ActivityModerate, GoalMaintain), estimate(ActivityModerate, GoalGain))

	assert.Less(t, estimate(ActivitySedentary, GoalMaintain), estimate(ActivityModerate, GoalMaintain))
	assert.Less(t, estimate(ActivityModerate, GoalMaintain), estimate(ActivityActive, GoalMaintain))
}

func TestEstimateIsIdempotent(t *testing.T) {
	inputs := baselineMale()
	first, err := DefaultPolicy.Estimate(inputs)
	require.NoError(t, err)
	second, err := DefaultPolicy.Estimate(inputs)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEstimateAgeBoundaries(t *testing.T) {
	for _, age := range []int{MinAgeYears, MaxAgeYears} {
		inputs := baselineMale()
		inputs.AgeYears = age
		_, err := EstimateDailyCalories(inputs)
		assert.NoError(t, err, "age %d", age)
	}

	for _, age := range []int{MinAgeYears - 1, MaxAgeYears + 1} {
		inputs := baselineMale()
		inputs.AgeYears = age
		_, err := EstimateDailyCalories(inputs)
		require.Error(t, err, "age %d", age)
		assert.ErrorIs(t, err, ErrInvalidInput)

		var fieldErr *FieldError
		require.True(t, errors.As(err, &fieldErr))
		assert.Equal(t, FieldAge, fieldErr.Field)
		assert.Equal(t, "age must be between 13 and 120", fieldErr.Error())
	}
}

func TestEstimateRejectsOutOfDomainMeasurements(t *testing.T) {
	testCases := []struct {
		name  string
		patch func(*ProfileInputs)
		field string
	}{
		{name: "short", patch: func(inputs *ProfileInputs) { inputs.HeightCm = 79.9 }, field: FieldHeight},
		{name: "tall", patch: func(inputs *ProfileInputs) { inputs.HeightCm = 250.1 }, field: FieldHeight},
		{name: "nan height", patch: func(inputs *ProfileInputs) { inputs.HeightCm = math.NaN() }, field: FieldHeight},
		{name: "light", patch: func(inputs *ProfileInputs) { inputs.WeightKg = 24 }, field: FieldWeight},
		{name: "heavy", patch: func(inputs *ProfileInputs) { inputs.WeightKg = 301 }, field: FieldWeight},
		{name: "inf weight", patch: func(inputs *ProfileInputs) { inputs.WeightKg = math.Inf(1) }, field: FieldWeight},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			inputs := baselineMale()
			testCase.patch(&inputs)

			_, err := EstimateDailyCalories(inputs)
			var fieldErr *FieldError
			require.True(t, errors.As(err, &fieldErr), "expected FieldError, got %v", err)
			assert.Equal(t, testCase.field, fieldErr.Field)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestEstimateRejectsUnknownEnumValues(t *testing.T) {
	inputs := baselineMale()
	inputs.ActivityLevel = "extreme"
	_, err := EstimateDailyCalories(inputs)
	assert.ErrorIs(t, err, ErrUnrecognizedEnum)

	inputs = baselineMale()
	inputs.Goal = "bulk"
	_, err = EstimateDailyCalories(inputs)
	assert.ErrorIs(t, err, ErrUnrecognizedEnum)
}

func TestFormulaFallbacksForUnknownEnumValues(t *testing.T) {
	assert.Equal(t, 1.55, ActivityLevel("extreme").Multiplier())
	assert.Equal(t, 0, DefaultPolicy.GoalOffset(Goal("bulk")))
}

func TestEstimateClampsImplausiblyLowTargets(t *testing.T) {
	inputs := ProfileInputs{
		AgeYears:      MaxAgeYears,
		Sex:           SexFemale,
		HeightCm:      MinHeightCm,
		WeightKg:      MinWeightKg,
		ActivityLevel: ActivitySedentary,
		Goal:          GoalLose,
	}

	result, err := DefaultPolicy.Estimate(inputs)
	require.NoError(t, err)
	assert.True(t, result.Clamped)
	assert.Equal(t, MinimumDailyCalories, result.DailyCalories)
}

func TestPolicyGainOffsetIsConfigurable(t *testing.T) {
	inputs := baselineMale()
	inputs.Goal = GoalGain

	canonical, err := DefaultPolicy.Estimate(inputs)
	require.NoError(t, err)
	assert.Equal(t, 2556+DefaultGainOffset, canonical.DailyCalories)

	generous, err := Policy{GainOffset: 500}.Estimate(inputs)
	require.NoError(t, err)
	assert.Equal(t, 2556+500, generous.DailyCalories)
}

func TestEstimateResultCarriesBreakdown(t *testing.T) {
	result, err := DefaultPolicy.Estimate(baselineMale())
	require.NoError(t, err)

	assert.Equal(t, 1648.75, result.BMR)
	assert.InDelta(t, 2555.56, result.TDEE, 0.001)
	assert.Equal(t, SplitMacros(2556), result.Macros)
}
