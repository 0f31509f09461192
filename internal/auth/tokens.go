// Package auth — выпуск и проверка сессионных токенов, хеширование
// паролей и жизненный цикл reset-токенов.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims — стандартные утверждения плюс id пользователя.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager выпускает и проверяет подписанные JWT (HS256).
// Ключ подписи — конфигурация процесса, никогда не per-request.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue выпускает токен с id пользователя, iat и фиксированным сроком.
func (m *Manager) Issue(userID uint) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Issuer:    "natours",
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify возвращает id пользователя и момент выпуска.
// Просроченный токен отличается от некорректного.
func (m *Manager) Verify(tokenString string) (uint, time.Time, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, time.Time{}, ErrTokenExpired
		}
		return 0, time.Time{}, ErrTokenInvalid
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, time.Time{}, ErrTokenInvalid
	}
	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	return claims.UserID, issuedAt, nil
}
