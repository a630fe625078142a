package nutrition

import "strings"

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityActive    ActivityLevel = "active"
)

type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

const (
	FieldAge           = "age"
	FieldSex           = "sex"
	FieldHeight        = "heightCm"
	FieldWeight        = "weightKg"
	FieldActivityLevel = "activityLevel"
	FieldGoal          = "goal"
)

var sexAliases = map[string]Sex{
	"male":   SexMale,
	"female": SexFemale,
	"other":  SexOther,
}

var activityAliases = map[string]ActivityLevel{
	"sedentary": ActivitySedentary,
	"low":       ActivitySedentary,
	"moderate":  ActivityModerate,
	"active":    ActivityActive,
	"high":      ActivityActive,
}

var goalAliases = map[string]Goal{
	"lose":        GoalLose,
	"lose_weight": GoalLose,
	"maintain":    GoalMaintain,
	"gain":        GoalGain,
	"gain_muscle": GoalGain,
}

func normalizeEnumKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	return strings.ReplaceAll(key, "-", "_")
}

// ParseSex maps a submitted sex or gender value to a Sex.
func ParseSex(raw string) (Sex, error) {
	key := normalizeEnumKey(raw)
	if key == "" {
		return "", missingField(FieldSex)
	}
	if value, ok := sexAliases[key]; ok {
		return value, nil
	}
	return "", unknownEnum(FieldSex, "male, female, other")
}

// ParseActivityLevel accepts the canonical names plus the low/high aliases.
func ParseActivityLevel(raw string) (ActivityLevel, error) {
	key := normalizeEnumKey(raw)
	if key == "" {
		return "", missingField(FieldActivityLevel)
	}
	if value, ok := activityAliases[key]; ok {
		return value, nil
	}
	return "", unknownEnum(FieldActivityLevel, "sedentary, moderate, active")
}

// ParseGoal accepts the canonical names plus the lose_weight/gain_muscle aliases.
func ParseGoal(raw string) (Goal, error) {
	key := normalizeEnumKey(raw)
	if key == "" {
		return "", missingField(FieldGoal)
	}
	if value, ok := goalAliases[key]; ok {
		return value, nil
	}
	return "", unknownEnum(FieldGoal, "lose, maintain, gain")
}

func (sex Sex) Valid() bool {
	switch sex {
	case SexMale, SexFemale, SexOther:
		return true
	default:
		return false
	}
}

func (level ActivityLevel) Valid() bool {
	switch level {
	case ActivitySedentary, ActivityModerate, ActivityActive:
		return true
	default:
		return false
	}
}

func (goal Goal) Valid() bool {
	switch goal {
	case GoalLose, GoalMaintain, GoalGain:
		return true
	default:
		return false
	}
}

// Multiplier returns the TDEE multiplier. Values outside the enum get the
// moderate multiplier.
func (level ActivityLevel) Multiplier() float64 {
	switch level {
	case ActivitySedentary:
		return 1.2
	case ActivityActive:
		return 1.725
	default:
		return 1.55
	}
}

// bmrOffset keeps the male / everything-else split: other uses the female offset.
func (sex Sex) bmrOffset() float64 {
	if sex == SexMale {
		return 5
	}
	return -161
}
