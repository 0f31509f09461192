package tours

import (
	"net/http"

	"github.com/gorilla/mux"

	"natours/internal/auth"
	"natours/internal/models"
)

func RegisterRoutes(r *mux.Router, h *Handler, requireAuth mux.MiddlewareFunc) {
	// Публичное чтение
	pub := r.PathPrefix("/api/v1/tours").Subrouter()
	pub.HandleFunc("", h.list).Methods(http.MethodGet)
	pub.HandleFunc("/top-5-cheap", h.TopTours).Methods(http.MethodGet)
	pub.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
	pub.HandleFunc("/within/{distance}/center/{latlng}/unit/{unit}", h.Within).Methods(http.MethodGet)
	pub.HandleFunc("/{id:[0-9]+}", h.factory.Get()).Methods(http.MethodGet)

	// План по месяцам — для сотрудников
	staff := r.PathPrefix("/api/v1/tours").Subrouter()
	staff.Use(requireAuth, auth.RequireRole(models.RoleAdmin, models.RoleLeadGuide, models.RoleGuide))
	staff.HandleFunc("/monthly-plan/{year:[0-9]+}", h.MonthlyPlan).Methods(http.MethodGet)

	// Управление турами
	adm := r.PathPrefix("/api/v1/tours").Subrouter()
	adm.Use(requireAuth, auth.RequireRole(models.RoleAdmin, models.RoleLeadGuide))
	adm.HandleFunc("", h.factory.Create(prepareCreate)).Methods(http.MethodPost)
	adm.HandleFunc("/{id:[0-9]+}", h.factory.Update()).Methods(http.MethodPatch)
	adm.HandleFunc("/{id:[0-9]+}", h.factory.Delete()).Methods(http.MethodDelete)
}
