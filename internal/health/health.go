package health

import (
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"natours/internal/models"
)

// RegisterRoutes — liveness + readiness (проверка БД).
func RegisterRoutes(r *mux.Router, db *gorm.DB) {
	r.HandleFunc("/healthz", liveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		sqlDB, err := db.DB()
		if err != nil {
			models.WriteMessage(w, http.StatusServiceUnavailable, "error", "db handle error")
			return
		}
		if err := sqlDB.Ping(); err != nil {
			models.WriteMessage(w, http.StatusServiceUnavailable, "error", "db unreachable")
			return
		}
		models.WriteMessage(w, http.StatusOK, "success", "ok")
	}).Methods(http.MethodGet)
}

func liveness(w http.ResponseWriter, _ *http.Request) {
	models.WriteMessage(w, http.StatusOK, "success", "ok")
}
