package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestKindHTTPStatus(t *testing.T) {
	t.Parallel()

	for kind, want := range map[Kind]int{
		KindValidation:      http.StatusBadRequest,
		KindCast:            http.StatusBadRequest,
		KindUnauthenticated: http.StatusUnauthorized,
		KindForbidden:       http.StatusForbidden,
		KindNotFound:        http.StatusNotFound,
		KindDuplicate:       http.StatusConflict,
		KindDelivery:        http.StatusBadGateway,
		KindInternal:        http.StatusInternalServerError,
	} {
		assert.Equal(t, want, kind.HTTPStatus())
	}
}

func TestFrom_ClassifiesGormErrors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindNotFound, From(gorm.ErrRecordNotFound).Kind)
	assert.Equal(t, KindNotFound, From(fmt.Errorf("query: %w", gorm.ErrRecordNotFound)).Kind)
	assert.Equal(t, KindDuplicate, From(gorm.ErrDuplicatedKey).Kind)

	// уже классифицированная ошибка проходит как есть
	orig := Forbidden("nope")
	assert.Same(t, orig, From(orig))
	assert.Same(t, orig, From(fmt.Errorf("wrap: %w", orig)))

	// всё прочее — внутренний сбой с generic-сообщением
	e := From(errors.New("disk on fire"))
	assert.Equal(t, KindInternal, e.Kind)
	assert.False(t, e.IsOperational())
	assert.Equal(t, "something went wrong", e.Message)
}

func TestWrite_EnvelopeShape(t *testing.T) {
	t.Parallel()

	write := func(err error) (int, map[string]any) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/tours/9000", nil)
		Write(w, r, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return w.Code, body
	}

	// 4xx — "fail" с сообщением как есть
	code, body := write(NotFound("no tour found with this id"))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "no tour found with this id", body["message"])

	// 5xx — "error", внутренняя причина наружу не уходит
	code, body = write(errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "something went wrong", body["message"])
	assert.NotContains(t, fmt.Sprint(body), "connection refused")
}
