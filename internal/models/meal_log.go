package models

import "time"

const (
	MealBreakfast = "Breakfast"
	MealLunch     = "Lunch"
	MealDinner    = "Dinner"
	MealSnack     = "Snack"
)

type FoodLog struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;index:idx_food_logs_user_logged,priority:1" json:"userId"`
	FoodID   uint      `gorm:"not null" json:"foodId"`
	Quantity float64   `gorm:"not null" json:"quantity"`
	MealType string    `gorm:"not null" json:"mealType"`
	LoggedAt time.Time `gorm:"not null;index:idx_food_logs_user_logged,priority:2" json:"loggedAt"`

	Food Food `gorm:"constraint:OnDelete:CASCADE" json:"food"`
	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
