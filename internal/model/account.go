package model

import (
	"time"

	"gorm.io/gorm"
)

// Account is an identity held by the first-party identity provider.
type Account struct {
	ID           string         `gorm:"primaryKey;size:64" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Name         string         `gorm:"not null" json:"name"`
	PasswordHash string         `json:"-"`
	Provider     string         `gorm:"not null;default:'password'" json:"provider"` // "password", "google"
	Subject      *string        `gorm:"uniqueIndex" json:"-"`                         // federated subject
	Disabled     bool           `gorm:"not null;default:false" json:"disabled"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
