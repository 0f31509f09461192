package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"natours/internal/models"
)

// UserStore — доступ к учётным записям. Неактивные пользователи
// отфильтровываются явно в каждом методе чтения (никаких хуков схемы).
type UserStore struct{ db *gorm.DB }

func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{db: db} }

// NormalizeEmail — каноничная форма: нижний регистр без пробелов.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	u.Email = NormalizeEmail(u.Email)
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *UserStore) ByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND active = ?", NormalizeEmail(email), true).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ByResetTokenHash ищет пользователя по хешу reset-токена с ещё не
// истёкшим сроком.
func (s *UserStore) ByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("reset_token_hash = ? AND reset_expires_at > ? AND active = ?", hash, time.Now(), true).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetResetToken сохраняет хеш и срок действия reset-токена.
func (s *UserStore) SetResetToken(ctx context.Context, u *models.User, hash string, expires time.Time) error {
	u.ResetTokenHash = hash
	u.ResetExpiresAt = &expires
	return s.db.WithContext(ctx).Model(u).
		Updates(map[string]any{"reset_token_hash": hash, "reset_expires_at": expires}).Error
}

// ClearResetToken откатывает частично выданный токен (например, если
// письмо не ушло).
func (s *UserStore) ClearResetToken(ctx context.Context, u *models.User) error {
	u.ResetTokenHash = ""
	u.ResetExpiresAt = nil
	return s.db.WithContext(ctx).Model(u).
		Updates(map[string]any{"reset_token_hash": "", "reset_expires_at": nil}).Error
}

// SetPassword записывает новый хеш пароля, чистит reset-поля и сдвигает
// password_changed_at — все ранее выданные токены становятся невалидными.
// Минус секунда — чтобы токен, выпущенный сразу после смены, не попал
// под отсечку (iat в JWT хранится с точностью до секунды).
func (s *UserStore) SetPassword(ctx context.Context, u *models.User, newHash string) error {
	changedAt := time.Now().Add(-time.Second)
	u.PasswordHash = newHash
	u.PasswordChangedAt = &changedAt
	u.ResetTokenHash = ""
	u.ResetExpiresAt = nil
	return s.db.WithContext(ctx).Model(u).Updates(map[string]any{
		"password_hash":       newHash,
		"password_changed_at": changedAt,
		"reset_token_hash":    "",
		"reset_expires_at":    nil,
	}).Error
}

// UpdateProfile — смена имени/почты/фото (update-me).
func (s *UserStore) UpdateProfile(ctx context.Context, u *models.User, updates map[string]any) error {
	if email, ok := updates["email"].(string); ok {
		updates["email"] = NormalizeEmail(email)
	}
	if err := s.db.WithContext(ctx).Model(u).Updates(updates).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).First(u, u.ID).Error
}

// Deactivate — мягкое "удаление" своей учётки: active=false.
func (s *UserStore) Deactivate(ctx context.Context, u *models.User) error {
	u.Active = false
	return s.db.WithContext(ctx).Model(u).Update("active", false).Error
}
