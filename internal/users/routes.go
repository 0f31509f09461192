package users

import (
	"net/http"

	"github.com/gorilla/mux"

	"natours/internal/auth"
	"natours/internal/models"
)

func RegisterRoutes(r *mux.Router, h *Handler, requireAuth mux.MiddlewareFunc) {
	// Публичные маршруты аутентификации
	pub := r.PathPrefix("/api/v1/users").Subrouter()
	pub.HandleFunc("/signup", h.Signup).Methods(http.MethodPost)
	pub.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	pub.HandleFunc("/logout", h.Logout).Methods(http.MethodGet)
	pub.HandleFunc("/forgot-password", h.ForgotPassword).Methods(http.MethodPost)
	pub.HandleFunc("/reset-password/{token}", h.ResetPassword).Methods(http.MethodPatch)

	// Личный кабинет
	me := r.PathPrefix("/api/v1/users").Subrouter()
	me.Use(requireAuth)
	me.HandleFunc("/me", h.Me).Methods(http.MethodGet)
	me.HandleFunc("/update-me", h.UpdateMe).Methods(http.MethodPatch)
	me.HandleFunc("/delete-me", h.DeleteMe).Methods(http.MethodDelete)
	me.HandleFunc("/update-password", h.UpdatePassword).Methods(http.MethodPatch)

	// Администрирование учёток
	adm := r.PathPrefix("/api/v1/users").Subrouter()
	adm.Use(requireAuth, auth.RequireRole(models.RoleAdmin))
	adm.HandleFunc("", h.factory.List(nil)).Methods(http.MethodGet)
	adm.HandleFunc("", h.CreateNotSupported).Methods(http.MethodPost)
	adm.HandleFunc("/{id:[0-9]+}", h.factory.Get()).Methods(http.MethodGet)
	adm.HandleFunc("/{id:[0-9]+}", h.factory.Update()).Methods(http.MethodPatch)
	adm.HandleFunc("/{id:[0-9]+}", h.factory.Delete()).Methods(http.MethodDelete)
}
