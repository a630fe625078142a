package models

import "time"

const (
	FoodSourceFNRI  = "fnri"
	FoodSourceAI    = "ai"
	FoodSourceAdmin = "admin"
)

type Food struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Calories  float64   `gorm:"not null;default:0" json:"calories"`
	Protein   float64   `gorm:"not null;default:0" json:"protein"`
	Carbs     float64   `gorm:"not null;default:0" json:"carbs"`
	Fat       float64   `gorm:"not null;default:0" json:"fat"`
	Fiber     float64   `gorm:"not null;default:0" json:"fiber"`
	Source    string    `gorm:"not null;default:''" json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// FoodQuery filters the food search. Nil minimums are ignored.
type FoodQuery struct {
	Text        string
	Source      string
	MinCalories *float64
	MinProtein  *float64
	MinCarbs    *float64
	MinFat      *float64
	Offset      int
	Limit       int
}
