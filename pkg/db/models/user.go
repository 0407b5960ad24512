package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account. Trip-level permissions live on
// TripMembership, not here.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"column:email;type:citext;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;type:text;not null"`
	DisplayName  string    `gorm:"column:display_name;type:text;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
