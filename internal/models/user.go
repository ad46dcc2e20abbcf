package models

import (
	"time"
)

// User mirrors the identity provider's account record. The ID is the
// provider's UUID, not a local serial, so the row can be upserted from
// auth metadata at any time.
type User struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	Name       string    `json:"name"`
	Username   string    `gorm:"index" json:"username"`
	Role       string    `gorm:"size:20;default:'user';not null" json:"role"` // user, admin
	ProfilePic string    `json:"profile_pic"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
