package models

import "time"

const (
	ChallengeKindManual        = "manual"
	ChallengeKindLoggingStreak = "logging_streak"
	ChallengeKindProteinGoal   = "protein_goal"

	ChallengeStatusActive    = "active"
	ChallengeStatusCompleted = "completed"
)

type Challenge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"uniqueIndex;not null" json:"title"`
	Description string    `gorm:"not null;default:''" json:"description"`
	Points      int       `gorm:"not null;default:0" json:"points"`
	Kind        string    `gorm:"not null;default:manual" json:"kind"`
	Target      int       `gorm:"not null;default:1" json:"target"`
	CreatedAt   time.Time `json:"createdAt"`
}

type UserChallenge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:uidx_user_challenge" json:"userId"`
	ChallengeID uint      `gorm:"not null;uniqueIndex:uidx_user_challenge" json:"challengeId"`
	Status      string    `gorm:"not null;default:active" json:"status"`
	Progress    int       `gorm:"not null;default:0" json:"progress"`
	UpdatedAt   time.Time `json:"updatedAt"`

	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Challenge Challenge `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
