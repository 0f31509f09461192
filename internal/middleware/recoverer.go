package middleware

import (
	"net/http"
	"runtime/debug"

	"natours/internal/logs"
	"natours/internal/models"
)

// Recoverer перехватывает панику в обработчике, пишет лог со стеком
// и возвращает 500 в общем JSON-формате API.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				reqid := GetRequestID(r)
				logs.Logger.Errorf("panic: %v reqid=%s uri=%s method=%s\nstack:\n%s",
					rec, reqid, r.RequestURI, r.Method, string(debug.Stack()))
				models.WriteMessage(w, http.StatusInternalServerError,
					"error", "something went wrong")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
