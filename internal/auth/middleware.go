package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"natours/internal/apperr"
	"natours/internal/models"
	"natours/internal/repo"
)

// CookieName — имя http-only cookie с сессионным токеном.
const CookieName = "jwt"

type ctxKey string

const userKey ctxKey = "currentUser"

// CurrentUser достаёт аутентифицированного пользователя из контекста.
func CurrentUser(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// WithUser кладёт пользователя в контекст (используется и в тестах).
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// TokenFromRequest — токен из "Authorization: Bearer ..." или cookie "jwt".
func TokenFromRequest(r *http.Request) string {
	const p = "Bearer "
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, p) {
		return strings.TrimPrefix(auth, p)
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireAuth проверяет токен, загружает пользователя и отсекает токены,
// выпущенные до последней смены пароля (отзыв через ротацию секрета).
func RequireAuth(m *Manager, users *repo.UserStore) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				apperr.Write(w, r, apperr.Unauthenticated("you are not logged in, please log in to get access"))
				return
			}

			userID, issuedAt, err := m.Verify(token)
			if err != nil {
				if err == ErrTokenExpired {
					apperr.Write(w, r, apperr.Unauthenticated("your token has expired, please log in again"))
				} else {
					apperr.Write(w, r, apperr.Unauthenticated("invalid token, please log in again"))
				}
				return
			}

			user, err := users.ByID(r.Context(), userID)
			if err != nil {
				apperr.Write(w, r, apperr.Unauthenticated("user belonging to this token does no longer exist"))
				return
			}

			if user.PasswordChangedAt != nil && user.PasswordChangedAt.After(issuedAt) {
				apperr.Write(w, r, apperr.Unauthenticated("user has recently changed password, please log in again"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireRole — чистая проверка роли; вешается после RequireAuth.
func RequireRole(roles ...string) mux.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r.Context())
			if user == nil {
				apperr.Write(w, r, apperr.Unauthenticated("you are not logged in, please log in to get access"))
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				apperr.Write(w, r, apperr.Forbidden("you do not have permission to perform this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
