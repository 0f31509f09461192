package bookings

import (
	"net/http"

	"github.com/gorilla/mux"

	"natours/internal/auth"
	"natours/internal/models"
)

func RegisterRoutes(r *mux.Router, h *Handler, requireAuth mux.MiddlewareFunc) {
	// Свои бронирования видит любой аутентифицированный пользователь
	my := r.PathPrefix("/api/v1/bookings").Subrouter()
	my.Use(requireAuth)
	my.HandleFunc("/my", h.My).Methods(http.MethodGet)

	// Остальное — персонал
	adm := r.PathPrefix("/api/v1/bookings").Subrouter()
	adm.Use(requireAuth, auth.RequireRole(models.RoleAdmin, models.RoleLeadGuide))
	adm.HandleFunc("", h.factory.List(nil, "Tour")).Methods(http.MethodGet)
	adm.HandleFunc("", h.factory.Create(prepareCreate)).Methods(http.MethodPost)
	adm.HandleFunc("/{id:[0-9]+}", h.factory.Get("Tour")).Methods(http.MethodGet)
	adm.HandleFunc("/{id:[0-9]+}", h.factory.Update()).Methods(http.MethodPatch)
	adm.HandleFunc("/{id:[0-9]+}", h.factory.Delete()).Methods(http.MethodDelete)
}
