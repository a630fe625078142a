package models

import "time"

// Profile stores the estimator inputs next to the denormalized targets
// derived from them. DailyCalories is zero until all six inputs are known.
type Profile struct {
	ID            uint     `gorm:"primaryKey" json:"id"`
	UserID        uint     `gorm:"uniqueIndex;not null" json:"userId"`
	Age           *int     `json:"age"`
	Sex           string   `gorm:"not null;default:''" json:"sex"`
	HeightCm      *float64 `json:"heightCm"`
	WeightKg      *float64 `json:"weightKg"`
	ActivityLevel string   `gorm:"not null;default:''" json:"activityLevel"`
	Goal          string   `gorm:"not null;default:''" json:"goal"`
	DietType      string   `gorm:"not null;default:''" json:"dietType"`
	Allergies     string   `gorm:"not null;default:''" json:"allergies"`
	Address       string   `gorm:"not null;default:''" json:"address"`
	CityCountry   string   `gorm:"not null;default:''" json:"cityCountry"`

	DailyCalories int `gorm:"not null;default:0" json:"dailyCalories"`
	ProteinGrams  int `gorm:"not null;default:0" json:"proteinGrams"`
	FatGrams      int `gorm:"not null;default:0" json:"fatGrams"`
	CarbGrams     int `gorm:"not null;default:0" json:"carbGrams"`

	OnboardingCompleted bool      `gorm:"not null;default:false" json:"onboardingCompleted"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func (profile *Profile) HasEstimate() bool {
	return profile != nil && profile.DailyCalories > 0
}
