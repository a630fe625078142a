package nutrition

import "math"

const (
	MinAgeYears = 13
	MaxAgeYears = 120
	MinHeightCm = 80.0
	MaxHeightCm = 250.0
	MinWeightKg = 25.0
	MaxWeightKg = 300.0
)

type ProfileInputs struct {
	AgeYears      int
	Sex           Sex
	HeightCm      float64
	WeightKg      float64
	ActivityLevel ActivityLevel
	Goal          Goal
}

// Validate reports the first field outside its domain, in wire order.
func (inputs ProfileInputs) Validate() error {
	if inputs.AgeYears < MinAgeYears || inputs.AgeYears > MaxAgeYears {
		return outOfRange(FieldAge, MinAgeYears, MaxAgeYears)
	}
	if !inputs.Sex.Valid() {
		return unknownEnum(FieldSex, "male, female, other")
	}
	if err := validateMeasurement(FieldHeight, inputs.HeightCm, MinHeightCm, MaxHeightCm); err != nil {
		return err
	}
	if err := validateMeasurement(FieldWeight, inputs.WeightKg, MinWeightKg, MaxWeightKg); err != nil {
		return err
	}
	if !inputs.ActivityLevel.Valid() {
		return unknownEnum(FieldActivityLevel, "sedentary, moderate, active")
	}
	if !inputs.Goal.Valid() {
		return unknownEnum(FieldGoal, "lose, maintain, gain")
	}
	return nil
}

func validateMeasurement(field string, value float64, min float64, max float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return notFinite(field)
	}
	if value < min || value > max {
		return outOfRange(field, min, max)
	}
	return nil
}

// ValidateAge checks a raw numeric age before it is narrowed to whole years.
func ValidateAge(value float64) (int, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, notFinite(FieldAge)
	}
	if value != math.Trunc(value) {
		return 0, notWholeNumber(FieldAge)
	}
	if value < MinAgeYears || value > MaxAgeYears {
		return 0, outOfRange(FieldAge, MinAgeYears, MaxAgeYears)
	}
	return int(value), nil
}

// ValidateMeasurement exposes the height/weight domain checks to request parsers.
func ValidateMeasurement(field string, value float64) error {
	switch field {
	case FieldHeight:
		return validateMeasurement(field, value, MinHeightCm, MaxHeightCm)
	case FieldWeight:
		return validateMeasurement(field, value, MinWeightKg, MaxWeightKg)
	default:
		return ErrInvalidMeasurement
	}
}
