package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Сложности тура.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

type Tour struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name         string `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Slug         string `gorm:"index;size:255" json:"slug,omitempty"`
	Duration     int    `gorm:"not null" json:"duration"` // дней
	MaxGroupSize int    `gorm:"not null" json:"max_group_size"`
	Difficulty   string `gorm:"size:32;not null" json:"difficulty"` // easy|medium|difficult

	RatingsAverage  float64 `gorm:"not null;default:4.5" json:"ratings_average"`
	RatingsQuantity int     `gorm:"not null;default:0" json:"ratings_quantity"`

	Price         float64  `gorm:"not null" json:"price"`
	PriceDiscount *float64 `json:"price_discount,omitempty"`

	Summary     string `gorm:"size:512" json:"summary,omitempty"`
	Description string `gorm:"type:text;not null" json:"description"`
	ImageCover  string `gorm:"size:512" json:"image_cover,omitempty"`

	Images     datatypes.JSONSlice[string]    `json:"images,omitempty"`
	StartDates datatypes.JSONSlice[time.Time] `json:"start_dates,omitempty"`

	// Точка старта — для поиска туров в радиусе.
	StartAddress string   `gorm:"size:512" json:"start_address,omitempty"`
	StartLat     *float64 `json:"start_lat,omitempty"`
	StartLng     *float64 `json:"start_lng,omitempty"`
}

// ValidDifficulty проверяет сложность по списку допустимых.
func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyDifficult:
		return true
	}
	return false
}
