package models

import "time"

type MealPlan struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_meal_plans_user_date,priority:1" json:"userId"`
	Date      time.Time `gorm:"type:date;not null;index:idx_meal_plans_user_date,priority:2" json:"date"`
	MealType  string    `gorm:"not null" json:"mealType"`
	Title     string    `gorm:"not null" json:"title"`
	Notes     string    `gorm:"not null;default:''" json:"notes"`
	CreatedAt time.Time `json:"createdAt"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
