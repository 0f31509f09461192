// Package crud — обобщённые обработчики create/read/update/delete поверх gorm.
// Списки всегда идут через query.Features; ошибки — через apperr.
package crud

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"natours/internal/apperr"
	"natours/internal/models"
	"natours/internal/query"
)

// ScopeFunc достаёт фиксированный фильтр из запроса (вложенные маршруты).
type ScopeFunc func(r *http.Request) (map[string]any, error)

// PrepareFunc дополняет создаваемый объект данными запроса (автор из контекста и т.п.).
type PrepareFunc[T any] func(r *http.Request, obj *T) error

type Factory[T any] struct {
	db        *gorm.DB
	name      string
	updatable map[string]struct{} // json-имя поля == имя колонки
}

// New создаёт фабрику для модели T. Обновляемые колонки выводятся из
// json-тегов модели; immutable исключает отдельные колонки из PATCH
// (служебные id/created_at/updated_at исключены всегда).
func New[T any](db *gorm.DB, name string, immutable ...string) *Factory[T] {
	f := &Factory[T]{db: db, name: name, updatable: jsonColumns[T]()}
	delete(f.updatable, "id")
	delete(f.updatable, "created_at")
	delete(f.updatable, "updated_at")
	for _, col := range immutable {
		delete(f.updatable, col)
	}
	return f
}

// jsonColumns собирает json-имена сериализуемых полей модели.
// Поля с json:"-" (секреты) не обновляются через API по построению.
func jsonColumns[T any]() map[string]struct{} {
	cols := map[string]struct{}{}
	t := reflect.TypeOf(*new(T))
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		cols[name] = struct{}{}
	}
	return cols
}

// IDFromRequest разбирает {id} из пути; мусор вместо числа — cast-ошибка.
func IDFromRequest(r *http.Request) (uint, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.Cast("invalid id: %q", raw)
	}
	return uint(id), nil
}

// List — GET коллекции: scope (опционально) → query.Features → Find.
func (f *Factory[T]) List(scope ScopeFunc, preloads ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tx := f.db.WithContext(r.Context()).Model(new(T))
		if scope != nil {
			cond, err := scope(r)
			if err != nil {
				apperr.Write(w, r, err)
				return
			}
			if len(cond) > 0 {
				tx = tx.Where(cond)
			}
		}
		tx, err := query.New(r.URL.Query()).Apply(tx)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		for _, p := range preloads {
			tx = tx.Preload(p)
		}
		var items []T
		if err := tx.Find(&items).Error; err != nil {
			apperr.Write(w, r, err)
			return
		}
		models.WriteList(w, len(items), map[string]any{"data": items})
	}
}

// Get — GET по id, с опциональными preload.
func (f *Factory[T]) Get(preloads ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := IDFromRequest(r)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		tx := f.db.WithContext(r.Context())
		for _, p := range preloads {
			tx = tx.Preload(p)
		}
		var obj T
		if err := tx.First(&obj, id).Error; err != nil {
			apperr.Write(w, r, err)
			return
		}
		models.WriteData(w, http.StatusOK, map[string]any{"data": obj})
	}
}

// Create — POST; prepare (если задан) выполняется до записи.
func (f *Factory[T]) Create(prepare PrepareFunc[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		obj := new(T)
		if err := json.NewDecoder(r.Body).Decode(obj); err != nil {
			apperr.Write(w, r, apperr.Validation("invalid request body: %v", err))
			return
		}
		if prepare != nil {
			if err := prepare(r, obj); err != nil {
				apperr.Write(w, r, err)
				return
			}
		}
		if err := f.db.WithContext(r.Context()).Create(obj).Error; err != nil {
			apperr.Write(w, r, err)
			return
		}
		models.WriteData(w, http.StatusCreated, map[string]any{"data": obj})
	}
}

// Update — PATCH по id: частичное обновление по списку разрешённых колонок.
func (f *Factory[T]) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := IDFromRequest(r)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			apperr.Write(w, r, apperr.Validation("invalid request body: %v", err))
			return
		}
		updates := map[string]any{}
		for k, v := range body {
			if _, ok := f.updatable[k]; ok {
				updates[k] = v
			}
		}
		if len(updates) == 0 {
			apperr.Write(w, r, apperr.Validation("no updatable fields in request body"))
			return
		}

		tx := f.db.WithContext(r.Context())
		var obj T
		if err := tx.First(&obj, id).Error; err != nil {
			apperr.Write(w, r, err)
			return
		}
		if err := tx.Model(&obj).Updates(updates).Error; err != nil {
			apperr.Write(w, r, err)
			return
		}
		// перечитываем, чтобы отдать актуальное состояние
		if err := tx.First(&obj, id).Error; err != nil {
			apperr.Write(w, r, err)
			return
		}
		models.WriteData(w, http.StatusOK, map[string]any{"data": obj})
	}
}

// Delete — DELETE по id; отсутствие записи — 404, успех — 204 без тела.
func (f *Factory[T]) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := IDFromRequest(r)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		res := f.db.WithContext(r.Context()).Delete(new(T), id)
		if res.Error != nil {
			apperr.Write(w, r, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			apperr.Write(w, r, apperr.NotFound("no %s found with this id", f.name))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
