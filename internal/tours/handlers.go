package tours

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"natours/internal/apperr"
	"natours/internal/crud"
	"natours/internal/models"
	"natours/internal/repo"
)

type Handler struct {
	tours   *repo.TourStore
	factory *crud.Factory[models.Tour]
	list    http.HandlerFunc
}

// Рейтинги пересчитываются из отзывов, JSON-колонки задаются при создании —
// через PATCH их не трогаем.
func New(db *gorm.DB) *Handler {
	f := crud.New[models.Tour](db, "tour",
		"ratings_average", "ratings_quantity", "images", "start_dates")
	return &Handler{
		tours:   repo.NewTourStore(db),
		factory: f,
		list:    f.List(nil),
	}
}

// GET /api/v1/tours/top-5-cheap — alias поверх обычного списка.
func (h *Handler) TopTours(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	q.Set("limit", "5")
	q.Set("sort", "-ratings_average,price")
	q.Set("fields", "name,price,ratings_average,summary,difficulty")
	r.URL.RawQuery = q.Encode()
	h.list(w, r)
}

// GET /api/v1/tours/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tours.Stats(r.Context())
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	models.WriteData(w, http.StatusOK, map[string]any{"stats": stats})
}

// GET /api/v1/tours/monthly-plan/{year}
func (h *Handler) MonthlyPlan(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		apperr.Write(w, r, apperr.Cast("invalid year: %q", mux.Vars(r)["year"]))
		return
	}
	plan, err := h.tours.MonthlyPlan(r.Context(), year)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	models.WriteData(w, http.StatusOK, map[string]any{"plan": plan})
}

const milesPerKm = 0.621371

// GET /api/v1/tours/within/{distance}/center/{latlng}/unit/{unit}
func (h *Handler) Within(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	distance, err := strconv.ParseFloat(vars["distance"], 64)
	if err != nil || distance <= 0 {
		apperr.Write(w, r, apperr.Cast("invalid distance: %q", vars["distance"]))
		return
	}
	latRaw, lngRaw, ok := strings.Cut(vars["latlng"], ",")
	if !ok {
		apperr.Write(w, r, apperr.Validation("please provide the center in lat,lng format"))
		return
	}
	lat, latErr := strconv.ParseFloat(latRaw, 64)
	lng, lngErr := strconv.ParseFloat(lngRaw, 64)
	if latErr != nil || lngErr != nil {
		apperr.Write(w, r, apperr.Cast("invalid center: %q", vars["latlng"]))
		return
	}

	radiusKm := distance
	switch vars["unit"] {
	case "km":
	case "mi":
		radiusKm = distance / milesPerKm
	default:
		apperr.Write(w, r, apperr.Validation("unit must be mi or km"))
		return
	}

	found, err := h.tours.Within(r.Context(), lat, lng, radiusKm)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	models.WriteList(w, len(found), map[string]any{"data": found})
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	s := slugRe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// prepareCreate валидирует обязательные поля и проставляет slug.
func prepareCreate(_ *http.Request, t *models.Tour) error {
	switch {
	case strings.TrimSpace(t.Name) == "":
		return apperr.Validation("a tour must have a name")
	case t.Duration <= 0:
		return apperr.Validation("a tour must have a duration")
	case t.MaxGroupSize <= 0:
		return apperr.Validation("a tour must have a group size")
	case !models.ValidDifficulty(t.Difficulty):
		return apperr.Validation("difficulty must be easy, medium or difficult")
	case t.Price <= 0:
		return apperr.Validation("a tour must have a price")
	case strings.TrimSpace(t.Description) == "":
		return apperr.Validation("a tour must have a description")
	}
	if t.PriceDiscount != nil && *t.PriceDiscount >= t.Price {
		return apperr.Validation("discount price should be below the regular price")
	}
	t.Slug = slugify(t.Name)
	// Рейтинг нового тура — дефолтный, что бы ни пришло в теле.
	t.RatingsAverage = 4.5
	t.RatingsQuantity = 0
	return nil
}
