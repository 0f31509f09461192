package models

import (
	"time"

	"gorm.io/gorm"
)

// Review — отзыв о туре. Пара (tour_id, user_id) уникальна:
// один пользователь — один отзыв на тур.
type Review struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Review string  `gorm:"type:text;not null" json:"review"`
	Rating float64 `gorm:"not null" json:"rating"` // 1..5

	TourID uint `gorm:"not null;uniqueIndex:idx_reviews_tour_user" json:"tour_id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_reviews_tour_user" json:"user_id"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
