package crud_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"natours/internal/crud"
	"natours/internal/db"
	"natours/internal/models"
)

type envelope struct {
	Status  string          `json:"status"`
	Results *int            `json:"results"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := db.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, d.AutoMigrate(&models.Tour{}, &models.User{}))
	return d
}

func newTourRouter(d *gorm.DB) *mux.Router {
	f := crud.New[models.Tour](d, "tour", "ratings_average", "ratings_quantity")
	r := mux.NewRouter()
	r.HandleFunc("/tours", f.List(nil)).Methods(http.MethodGet)
	r.HandleFunc("/tours", f.Create(nil)).Methods(http.MethodPost)
	r.HandleFunc("/tours/{id}", f.Get()).Methods(http.MethodGet)
	r.HandleFunc("/tours/{id}", f.Update()).Methods(http.MethodPatch)
	r.HandleFunc("/tours/{id}", f.Delete()).Methods(http.MethodDelete)
	return r
}

func do(r *mux.Router, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func seedTour(t *testing.T, d *gorm.DB, name string, price float64) *models.Tour {
	t.Helper()
	tour := &models.Tour{
		Name:         name,
		Duration:     7,
		MaxGroupSize: 10,
		Difficulty:   models.DifficultyEasy,
		Price:        price,
		Description:  "seeded",
	}
	require.NoError(t, d.Create(tour).Error)
	return tour
}

func TestFactory_CreateGetUpdateDelete(t *testing.T) {
	d := newTestDB(t)
	r := newTourRouter(d)

	w := do(r, http.MethodPost, "/tours", `{
		"name": "The City Wanderer",
		"duration": 9,
		"max_group_size": 20,
		"difficulty": "easy",
		"price": 1197,
		"description": "urban walking"
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data models.Tour `json:"data"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	require.NotZero(t, created.Data.ID)
	id := created.Data.ID

	w = do(r, http.MethodGet, fmt.Sprintf("/tours/%d", id), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPatch, fmt.Sprintf("/tours/%d", id), `{"price": 999}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var patched struct {
		Data models.Tour `json:"data"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &patched))
	assert.Equal(t, 999.0, patched.Data.Price)
	assert.Equal(t, "The City Wanderer", patched.Data.Name)

	w = do(r, http.MethodDelete, fmt.Sprintf("/tours/%d", id), "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(r, http.MethodGet, fmt.Sprintf("/tours/%d", id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFactory_ListWithQueryFeatures(t *testing.T) {
	d := newTestDB(t)
	r := newTourRouter(d)

	for i := 1; i <= 15; i++ {
		seedTour(t, d, fmt.Sprintf("tour-%02d", i), float64(100*i))
	}

	w := do(r, http.MethodGet, "/tours?sort=-price&page=2&limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)

	env := decode(t, w)
	assert.Equal(t, "success", env.Status)
	require.NotNil(t, env.Results)
	assert.Equal(t, 5, *env.Results)

	var data struct {
		Data []models.Tour `json:"data"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Data, 5)
	// вторая страница хвоста по убыванию цены: 500..100
	assert.Equal(t, 500.0, data.Data[0].Price)
	assert.Equal(t, 100.0, data.Data[4].Price)
}

func TestFactory_ListBadOperator(t *testing.T) {
	d := newTestDB(t)
	r := newTourRouter(d)

	w := do(r, http.MethodGet, "/tours?price[near]=100", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "fail", env.Status)
	assert.Contains(t, env.Message, "unknown filter operator")
}

func TestFactory_UpdateIgnoresProtectedColumns(t *testing.T) {
	d := newTestDB(t)
	r := newTourRouter(d)
	tour := seedTour(t, d, "protected", 500)

	// immutable-колонки отбрасываются, остальное применяется
	w := do(r, http.MethodPatch, fmt.Sprintf("/tours/%d", tour.ID),
		`{"ratings_average": 1.0, "price": 600}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.Tour
	require.NoError(t, d.First(&stored, tour.ID).Error)
	assert.Equal(t, 600.0, stored.Price)
	assert.InDelta(t, 4.5, stored.RatingsAverage, 1e-9)

	// тело целиком из защищённых колонок — ошибка валидации
	w = do(r, http.MethodPatch, fmt.Sprintf("/tours/%d", tour.ID), `{"id": 7}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFactory_SecretsNotUpdatable(t *testing.T) {
	d := newTestDB(t)
	f := crud.New[models.User](d, "user")
	r := mux.NewRouter()
	r.HandleFunc("/users/{id}", f.Update()).Methods(http.MethodPatch)

	u := &models.User{
		Name:         "Locked",
		Email:        "locked@example.com",
		Role:         models.RoleUser,
		PasswordHash: "original-hash",
		Active:       true,
	}
	require.NoError(t, d.Create(u).Error)

	// поля с json:"-" не входят в список обновляемых
	w := do(r, http.MethodPatch, fmt.Sprintf("/users/%d", u.ID),
		`{"password_hash": "evil", "active": false}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var stored models.User
	require.NoError(t, d.First(&stored, u.ID).Error)
	assert.Equal(t, "original-hash", stored.PasswordHash)
	assert.True(t, stored.Active)
}

func TestFactory_BadID(t *testing.T) {
	d := newTestDB(t)
	r := newTourRouter(d)

	w := do(r, http.MethodGet, "/tours/abc", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "fail", decode(t, w).Status)

	w = do(r, http.MethodDelete, "/tours/12345", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
