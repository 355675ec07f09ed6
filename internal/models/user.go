package models

import (
	"time"

	"gorm.io/gorm"
)

// User logs in with its e-mail address; Email is stored lower-cased so the
// unique index is case-insensitive.
type User struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Email         string         `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Username      string         `json:"username" gorm:"size:255"`
	FirstName     string         `json:"first_name" gorm:"size:150"`
	LastName      string         `json:"last_name" gorm:"size:150"`
	FullName      string         `json:"full_name" gorm:"size:255"`
	Password      string         `json:"-" gorm:"not null"`
	IsVerified    bool           `json:"is_verified" gorm:"not null"`
	IsStaff       bool           `json:"is_staff" gorm:"not null"`
	BusinessName  string         `json:"business_name" gorm:"size:255"`
	BusinessType  string         `json:"business_type" gorm:"size:100"`
	LicenseNumber string         `json:"license_number" gorm:"size:100"`
	Phone         string         `json:"phone" gorm:"size:20"`
	Address       string         `json:"address" gorm:"type:text"`
	LastLogin     *time.Time     `json:"last_login"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// DisplayName falls back to the e-mail when no name was given.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// Recovery holds a single-use password recovery token.
type Recovery struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	User      User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Token     string    `json:"-" gorm:"size:32;not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}
