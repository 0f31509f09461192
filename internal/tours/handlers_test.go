package tours

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"natours/internal/auth"
	"natours/internal/db"
	"natours/internal/models"
	"natours/internal/repo"
)

type testApp struct {
	db     *gorm.DB
	router *mux.Router
	tokens *auth.Manager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	d, err := db.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, d.AutoMigrate(&models.User{}, &models.Tour{}))

	tokens := auth.NewManager("test-secret", time.Hour)
	r := mux.NewRouter().StrictSlash(true)
	RegisterRoutes(r, New(d), auth.RequireAuth(tokens, repo.NewUserStore(d)))
	return &testApp{db: d, router: r, tokens: tokens}
}

func (a *testApp) tokenFor(t *testing.T, email, role string) string {
	t.Helper()
	u := &models.User{Name: "Staff", Email: email, Role: role, PasswordHash: "x", Active: true}
	require.NoError(t, a.db.Create(u).Error)
	token, err := a.tokens.Issue(u.ID)
	require.NoError(t, err)
	return token
}

func (a *testApp) do(method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) seed(t *testing.T, tour models.Tour) *models.Tour {
	t.Helper()
	if tour.Duration == 0 {
		tour.Duration = 5
	}
	if tour.MaxGroupSize == 0 {
		tour.MaxGroupSize = 10
	}
	if tour.Difficulty == "" {
		tour.Difficulty = models.DifficultyEasy
	}
	if tour.Description == "" {
		tour.Description = "seeded"
	}
	require.NoError(t, a.db.Create(&tour).Error)
	return &tour
}

func TestCreateTour(t *testing.T) {
	app := newTestApp(t)
	admin := app.tokenFor(t, "admin@example.com", models.RoleAdmin)

	w := app.do(http.MethodPost, "/api/v1/tours", `{
		"name": "The Forest Hiker",
		"duration": 5,
		"max_group_size": 25,
		"difficulty": "easy",
		"price": 397,
		"description": "breathtaking hike",
		"ratings_average": 1.0,
		"ratings_quantity": 99
	}`, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env struct {
		Data struct {
			Data models.Tour `json:"data"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	created := env.Data.Data
	assert.Equal(t, "the-forest-hiker", created.Slug)
	// рейтинг нового тура всегда дефолтный
	assert.InDelta(t, 4.5, created.RatingsAverage, 1e-9)
	assert.Equal(t, 0, created.RatingsQuantity)
}

func TestCreateTour_Validation(t *testing.T) {
	app := newTestApp(t)
	admin := app.tokenFor(t, "admin2@example.com", models.RoleAdmin)

	for name, body := range map[string]string{
		"no name":       `{"duration": 5, "max_group_size": 10, "difficulty": "easy", "price": 100, "description": "d"}`,
		"no price":      `{"name": "x", "duration": 5, "max_group_size": 10, "difficulty": "easy", "description": "d"}`,
		"bad level":     `{"name": "x", "duration": 5, "max_group_size": 10, "difficulty": "insane", "price": 100, "description": "d"}`,
		"high discount": `{"name": "x", "duration": 5, "max_group_size": 10, "difficulty": "easy", "price": 100, "price_discount": 150, "description": "d"}`,
	} {
		w := app.do(http.MethodPost, "/api/v1/tours", body, admin)
		assert.Equal(t, http.StatusBadRequest, w.Code, "case %q: %s", name, w.Body.String())
	}
}

func TestCreateTour_RequiresStaffRole(t *testing.T) {
	app := newTestApp(t)
	user := app.tokenFor(t, "user@example.com", models.RoleUser)

	w := app.do(http.MethodPost, "/api/v1/tours",
		`{"name": "x", "duration": 5, "max_group_size": 10, "difficulty": "easy", "price": 100, "description": "d"}`,
		user)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodPost, "/api/v1/tours", `{}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTopTours(t *testing.T) {
	app := newTestApp(t)
	for i := 1; i <= 7; i++ {
		app.seed(t, models.Tour{
			Name:           fmt.Sprintf("tour-%d", i),
			Price:          float64(100 * i),
			RatingsAverage: 4.0 + float64(i)*0.1,
		})
	}

	w := app.do(http.MethodGet, "/api/v1/tours/top-5-cheap", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env struct {
		Results *int `json:"results"`
		Data    struct {
			Data []models.Tour `json:"data"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Results)
	assert.Equal(t, 5, *env.Results)

	items := env.Data.Data
	require.Len(t, items, 5)
	// лучший рейтинг первым
	assert.Equal(t, "tour-7", items[0].Name)
	for i := 1; i < len(items); i++ {
		assert.GreaterOrEqual(t, items[i-1].RatingsAverage, items[i].RatingsAverage)
	}
	// проекция: description не выбирается
	assert.Empty(t, items[0].Description)
	assert.NotEmpty(t, items[0].Name)
}

func TestMonthlyPlan_RoleGuard(t *testing.T) {
	app := newTestApp(t)
	user := app.tokenFor(t, "plain@example.com", models.RoleUser)
	guide := app.tokenFor(t, "guide@example.com", models.RoleGuide)

	w := app.do(http.MethodGet, "/api/v1/tours/monthly-plan/2025", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(http.MethodGet, "/api/v1/tours/monthly-plan/2025", "", user)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodGet, "/api/v1/tours/monthly-plan/2025", "", guide)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestWithin_ParamValidation(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/api/v1/tours/within/100/center/48.85,2.35/unit/km", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(http.MethodGet, "/api/v1/tours/within/100/center/48.85,2.35/unit/parsec", "", "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodGet, "/api/v1/tours/within/100/center/not-a-point/unit/km", "", "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodGet, "/api/v1/tours/within/-5/center/48.85,2.35/unit/km", "", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"The Forest Hiker":   "the-forest-hiker",
		"  Sea  &  Sun!  ":   "sea-sun",
		"Åland Trip 2025":    "land-trip-2025",
		"--already-slugged-": "already-slugged",
	} {
		assert.Equal(t, want, slugify(in), "input %q", in)
	}
}
