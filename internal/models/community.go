package models

import "time"

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	Body      string    `gorm:"not null" json:"body"`
	Likes     int       `gorm:"not null;default:0" json:"likes"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	User     User      `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	Comments []Comment `gorm:"constraint:OnDelete:CASCADE" json:"comments"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	UserID    uint      `gorm:"not null" json:"userId"`
	Body      string    `gorm:"not null" json:"body"`
	CreatedAt time.Time `json:"createdAt"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"user"`
}
