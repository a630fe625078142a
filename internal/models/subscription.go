package models

import (
	"strings"
	"time"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
)

type SubscriptionPlan struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"uniqueIndex;not null" json:"name"`
	PriceCents int    `gorm:"not null;default:0" json:"priceCents"`
	Features   string `gorm:"not null;default:''" json:"features"`
}

// FeatureList splits the comma separated feature column.
func (plan SubscriptionPlan) FeatureList() []string {
	features := make([]string, 0)
	for _, feature := range strings.Split(plan.Features, ",") {
		if trimmed := strings.TrimSpace(feature); trimmed != "" {
			features = append(features, trimmed)
		}
	}
	return features
}

type Subscription struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"userId"`
	PlanID    uint       `gorm:"not null" json:"planId"`
	Status    string     `gorm:"not null;default:active" json:"status"`
	StartedAt time.Time  `gorm:"not null" json:"startedAt"`
	EndsAt    *time.Time `json:"endsAt"`

	Plan SubscriptionPlan `json:"plan"`
	User User             `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
