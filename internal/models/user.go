// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User is an account. Non-staff accounts own exactly one Profile.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	IsStaff   bool      `gorm:"not null;default:false" json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

