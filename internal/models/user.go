package models

import (
	"time"

	"gorm.io/gorm"
)

// Роли пользователей.
const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

// User — учётная запись. Секреты (хеш пароля, хеш reset-токена)
// никогда не попадают в JSON.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name  string `gorm:"size:255;not null" json:"name"`
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"` // хранится в нижнем регистре
	Role  string `gorm:"size:32;not null;default:user" json:"role"`
	Photo string `gorm:"size:512" json:"photo,omitempty"`

	PasswordHash      string     `gorm:"size:255;not null" json:"-"`
	PasswordChangedAt *time.Time `json:"-"`
	ResetTokenHash    string     `gorm:"index;size:64" json:"-"`
	ResetExpiresAt    *time.Time `json:"-"`

	Active bool `gorm:"not null;default:true" json:"-"`
}

// ValidRole проверяет роль по списку допустимых.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}
