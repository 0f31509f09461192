package bookings

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
	require.NoError(t, d.AutoMigrate(&models.User{}, &models.Tour{}, &models.Booking{}))

	tokens := auth.NewManager("test-secret", time.Hour)
	r := mux.NewRouter().StrictSlash(true)
	RegisterRoutes(r, New(d), auth.RequireAuth(tokens, repo.NewUserStore(d)))
	return &testApp{db: d, router: r, tokens: tokens}
}

func (a *testApp) newUser(t *testing.T, email, role string) (*models.User, string) {
	t.Helper()
	u := &models.User{Name: "Booker", Email: email, Role: role, PasswordHash: "x", Active: true}
	require.NoError(t, a.db.Create(u).Error)
	token, err := a.tokens.Issue(u.ID)
	require.NoError(t, err)
	return u, token
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

func TestMyBookings_ScopedToCurrentUser(t *testing.T) {
	app := newTestApp(t)
	u1, token1 := app.newUser(t, "b1@example.com", models.RoleUser)
	u2, _ := app.newUser(t, "b2@example.com", models.RoleUser)

	tour := &models.Tour{
		Name: "booked-tour", Duration: 5, MaxGroupSize: 10,
		Difficulty: models.DifficultyEasy, Price: 100, Description: "d",
	}
	require.NoError(t, app.db.Create(tour).Error)

	require.NoError(t, app.db.Create(&models.Booking{TourID: tour.ID, UserID: u1.ID, Price: 100, Paid: true}).Error)
	require.NoError(t, app.db.Create(&models.Booking{TourID: tour.ID, UserID: u2.ID, Price: 100, Paid: true}).Error)

	w := app.do(http.MethodGet, "/api/v1/bookings/my", "", token1)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env struct {
		Results *int `json:"results"`
		Data    struct {
			Data []models.Booking `json:"data"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Results)
	assert.Equal(t, 1, *env.Results)
	require.Len(t, env.Data.Data, 1)
	assert.Equal(t, u1.ID, env.Data.Data[0].UserID)
	// тур подгружен
	require.NotNil(t, env.Data.Data[0].Tour)
	assert.Equal(t, "booked-tour", env.Data.Data[0].Tour.Name)
}

func TestBookings_AdminOnly(t *testing.T) {
	app := newTestApp(t)
	_, userToken := app.newUser(t, "plain@example.com", models.RoleUser)
	lead, leadToken := app.newUser(t, "lead@example.com", models.RoleLeadGuide)

	tour := &models.Tour{
		Name: "managed-tour", Duration: 5, MaxGroupSize: 10,
		Difficulty: models.DifficultyEasy, Price: 250, Description: "d",
	}
	require.NoError(t, app.db.Create(tour).Error)

	w := app.do(http.MethodGet, "/api/v1/bookings", "", userToken)
	require.Equal(t, http.StatusForbidden, w.Code)

	body := fmt.Sprintf(`{"tour_id": %d, "user_id": %d, "price": 250}`, tour.ID, lead.ID)
	w = app.do(http.MethodPost, "/api/v1/bookings", body, userToken)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodPost, "/api/v1/bookings", body, leadToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// без тура бронирование не создаётся
	w = app.do(http.MethodPost, "/api/v1/bookings",
		fmt.Sprintf(`{"user_id": %d, "price": 250}`, lead.ID), leadToken)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodGet, "/api/v1/bookings", "", leadToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
