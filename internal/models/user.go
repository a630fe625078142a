package models

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Email              string    `gorm:"uniqueIndex;not null" json:"email,omitempty"`
	Username           string    `gorm:"uniqueIndex;not null" json:"username"`
	Name               string    `gorm:"not null;default:''" json:"name"`
	PasswordHash       string    `gorm:"not null" json:"-"`
	MustChangePassword bool      `gorm:"not null;default:false" json:"-"`
	SessionVersion     int       `gorm:"not null;default:1" json:"-"`
	WarningCount       int       `gorm:"not null;default:0" json:"-"`
	CreatedAt          time.Time `gorm:"not null" json:"createdAt,omitempty"`
	UpdatedAt          time.Time `json:"-"`

	Profile *Profile `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}
