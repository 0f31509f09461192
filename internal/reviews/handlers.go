package reviews

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"natours/internal/apperr"
	"natours/internal/auth"
	"natours/internal/crud"
	"natours/internal/models"
	"natours/internal/repo"
)

type Handler struct {
	reviews *repo.ReviewStore
	factory *crud.Factory[models.Review]
}

func New(db *gorm.DB) *Handler {
	return &Handler{
		reviews: repo.NewReviewStore(db),
		factory: crud.New[models.Review](db, "review"),
	}
}

// tourScope — фильтр по туру для вложенного маршрута
// GET /tours/{tourId}/reviews.
func tourScope(r *http.Request) (map[string]any, error) {
	raw, ok := mux.Vars(r)["tourId"]
	if !ok {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apperr.Cast("invalid tour id: %q", raw)
	}
	return map[string]any{"tour_id": uint(id)}, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.factory.List(tourScope, "User")(w, r)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.factory.Get("User")(w, r)
}

type reviewRequest struct {
	Review *string  `json:"review"`
	Rating *float64 `json:"rating"`
	TourID uint     `json:"tour_id"`
}

func validRating(r float64) bool { return r >= 1 && r <= 5 }

// POST /api/v1/tours/{tourId}/reviews — автор из контекста, тур из пути.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, r, apperr.Validation("invalid request body: %v", err))
		return
	}

	tourID := req.TourID
	if raw, ok := mux.Vars(r)["tourId"]; ok {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apperr.Write(w, r, apperr.Cast("invalid tour id: %q", raw))
			return
		}
		tourID = uint(id)
	}
	if tourID == 0 {
		apperr.Write(w, r, apperr.Validation("review must belong to a tour"))
		return
	}
	if req.Review == nil || strings.TrimSpace(*req.Review) == "" {
		apperr.Write(w, r, apperr.Validation("review cannot be empty"))
		return
	}
	if req.Rating == nil || !validRating(*req.Rating) {
		apperr.Write(w, r, apperr.Validation("rating must be between 1 and 5"))
		return
	}

	rev := &models.Review{
		Review: strings.TrimSpace(*req.Review),
		Rating: *req.Rating,
		TourID: tourID,
		UserID: auth.CurrentUser(r.Context()).ID,
	}
	if err := h.reviews.Create(r.Context(), rev); err != nil {
		apperr.Write(w, r, err)
		return
	}
	// Явный пересчёт рейтинга тура после мутации отзыва.
	if err := h.reviews.RecalcTourRatings(r.Context(), rev.TourID); err != nil {
		apperr.Write(w, r, err)
		return
	}
	models.WriteData(w, http.StatusCreated, map[string]any{"review": rev})
}

// loadOwned возвращает отзыв, если он принадлежит текущему пользователю
// (или пользователь — админ).
func (h *Handler) loadOwned(r *http.Request) (*models.Review, error) {
	id, err := crud.IDFromRequest(r)
	if err != nil {
		return nil, err
	}
	rev, err := h.reviews.ByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	user := auth.CurrentUser(r.Context())
	if rev.UserID != user.ID && user.Role != models.RoleAdmin {
		return nil, apperr.Forbidden("you can only modify your own reviews")
	}
	return rev, nil
}

// PATCH /api/v1/reviews/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	rev, err := h.loadOwned(r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, r, apperr.Validation("invalid request body: %v", err))
		return
	}
	updates := map[string]any{}
	if req.Review != nil {
		if strings.TrimSpace(*req.Review) == "" {
			apperr.Write(w, r, apperr.Validation("review cannot be empty"))
			return
		}
		updates["review"] = strings.TrimSpace(*req.Review)
	}
	if req.Rating != nil {
		if !validRating(*req.Rating) {
			apperr.Write(w, r, apperr.Validation("rating must be between 1 and 5"))
			return
		}
		updates["rating"] = *req.Rating
	}
	if len(updates) == 0 {
		apperr.Write(w, r, apperr.Validation("nothing to update"))
		return
	}

	if err := h.reviews.Update(r.Context(), rev, updates); err != nil {
		apperr.Write(w, r, err)
		return
	}
	if err := h.reviews.RecalcTourRatings(r.Context(), rev.TourID); err != nil {
		apperr.Write(w, r, err)
		return
	}
	models.WriteData(w, http.StatusOK, map[string]any{"review": rev})
}

// DELETE /api/v1/reviews/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	rev, err := h.loadOwned(r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if err := h.reviews.Delete(r.Context(), rev); err != nil {
		apperr.Write(w, r, err)
		return
	}
	if err := h.reviews.RecalcTourRatings(r.Context(), rev.TourID); err != nil {
		apperr.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
