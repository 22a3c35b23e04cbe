package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Profile holds the public identity of a user, keyed by the user's ID. It is
// created lazily on first login when absent; the role column is the sole
// source of truth for the admin gate.
type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Role        string    `gorm:"not null;default:'user'" json:"role"`
	DisplayName string    `gorm:"not null" json:"display_name"`
	FullName    *string   `json:"full_name"`
	Phone       *string   `json:"phone"`
	Bio         *string   `json:"bio"`
	AvatarURL   *string   `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
