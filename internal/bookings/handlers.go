package bookings

import (
	"net/http"

	"gorm.io/gorm"

	"natours/internal/apperr"
	"natours/internal/auth"
	"natours/internal/crud"
	"natours/internal/models"
)

type Handler struct {
	factory *crud.Factory[models.Booking]
}

func New(db *gorm.DB) *Handler {
	return &Handler{factory: crud.New[models.Booking](db, "booking")}
}

// myScope ограничивает список бронированиями текущего пользователя.
func myScope(r *http.Request) (map[string]any, error) {
	return map[string]any{"user_id": auth.CurrentUser(r.Context()).ID}, nil
}

// GET /api/v1/bookings/my
func (h *Handler) My(w http.ResponseWriter, r *http.Request) {
	h.factory.List(myScope, "Tour")(w, r)
}

// prepareCreate — бронирование создаётся вручную (админ/lead-guide);
// оплата через внешнего провайдера — вне этого сервиса.
func prepareCreate(r *http.Request, b *models.Booking) error {
	if b.TourID == 0 {
		return apperr.Validation("booking must belong to a tour")
	}
	if b.UserID == 0 {
		return apperr.Validation("booking must belong to a user")
	}
	if b.Price <= 0 {
		return apperr.Validation("booking must have a price")
	}
	return nil
}
