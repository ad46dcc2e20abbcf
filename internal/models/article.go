package models

import (
	"time"
)

type Article struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Content     string     `gorm:"type:text" json:"content"` // markdown source
	Image       string     `json:"image"`
	CategoryID  *uint      `gorm:"index" json:"category_id"`
	Category    *Category  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	AuthorID    *string    `gorm:"size:36;index" json:"author_id"`
	Author      *User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"author,omitempty"`
	Likes       int        `gorm:"default:0;not null" json:"likes"` // kept >= 0, mutated only via the like toggle
	Date        *time.Time `json:"date"`                            // editorial publication date, falls back to CreatedAt
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
