package models

import (
	"time"

	"gorm.io/gorm"
)

type Booking struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TourID uint    `gorm:"not null;index" json:"tour_id"`
	UserID uint    `gorm:"not null;index" json:"user_id"`
	Price  float64 `gorm:"not null" json:"price"`
	Paid   bool    `gorm:"not null;default:true" json:"paid"`

	Tour *Tour `gorm:"foreignKey:TourID" json:"tour,omitempty"`
}
