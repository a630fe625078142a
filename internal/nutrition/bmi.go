package nutrition

const (
	BMIUnderweight = "Underweight"
	BMINormal      = "Normal weight"
	BMIOverweight  = "Overweight"
	BMIObese       = "Obese"
)

// BMI returns weight / height(m)^2 rounded to one decimal.
func BMI(heightCm float64, weightKg float64) (float64, error) {
	if err := ValidateMeasurement(FieldHeight, heightCm); err != nil {
		return 0, err
	}
	if err := ValidateMeasurement(FieldWeight, weightKg); err != nil {
		return 0, err
	}
	heightM := heightCm / 100
	return roundTo(weightKg/(heightM*heightM), 1), nil
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}
