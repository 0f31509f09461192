package reviews

import (
	"net/http"

	"github.com/gorilla/mux"

	"natours/internal/auth"
	"natours/internal/models"
)

func RegisterRoutes(r *mux.Router, h *Handler, requireAuth mux.MiddlewareFunc) {
	// Чтение отзывов открыто
	pub := r.PathPrefix("/api/v1/reviews").Subrouter()
	pub.HandleFunc("", h.List).Methods(http.MethodGet)
	pub.HandleFunc("/{id:[0-9]+}", h.Get).Methods(http.MethodGet)

	nested := r.PathPrefix("/api/v1/tours/{tourId:[0-9]+}/reviews").Subrouter()
	nested.HandleFunc("", h.List).Methods(http.MethodGet)

	// Оставлять отзывы могут только обычные пользователи
	create := r.PathPrefix("/api/v1/tours/{tourId:[0-9]+}/reviews").Subrouter()
	create.Use(requireAuth, auth.RequireRole(models.RoleUser))
	create.HandleFunc("", h.Create).Methods(http.MethodPost)

	// Правка/удаление — автор или админ (проверка в обработчике)
	own := r.PathPrefix("/api/v1/reviews").Subrouter()
	own.Use(requireAuth)
	own.HandleFunc("/{id:[0-9]+}", h.Update).Methods(http.MethodPatch)
	own.HandleFunc("/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete)
}
