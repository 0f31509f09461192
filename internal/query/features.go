// Package query переводит query-string запроса в составной запрос gorm:
// фильтрация, сортировка, проекция полей и пагинация. Построение чистое —
// никакого I/O, итоговый *gorm.DB выполняет вызывающая сторона.
package query

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"natours/internal/apperr"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000 // явный потолок против выгрузки всей таблицы
)

// Служебные ключи — не участвуют в фильтрации.
var reserved = map[string]struct{}{
	"page":   {},
	"sort":   {},
	"limit":  {},
	"fields": {},
}

// Допустимые операторы сравнения: field[op]=value.
// Неизвестный оператор — ошибка валидации, в движок ничего не протекает.
var operators = map[string]string{
	"gte": ">=",
	"gt":  ">",
	"lte": "<=",
	"lt":  "<",
}

// Имена полей попадают в SQL как идентификаторы, поэтому валидируются жёстко.
var identRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Features — разобранные параметры одного запроса.
type Features struct {
	params url.Values
}

func New(params url.Values) *Features {
	return &Features{params: params}
}

// Apply прогоняет все стадии по порядку: filter → sort → fields → paginate.
func (f *Features) Apply(tx *gorm.DB) (*gorm.DB, error) {
	tx, err := f.Filter(tx)
	if err != nil {
		return nil, err
	}
	tx, err = f.Sort(tx)
	if err != nil {
		return nil, err
	}
	tx, err = f.Fields(tx)
	if err != nil {
		return nil, err
	}
	return f.Paginate(tx)
}

// Filter: ключ без скобок — точное равенство, key[gte|gt|lte|lt] — сравнение.
func (f *Features) Filter(tx *gorm.DB) (*gorm.DB, error) {
	for key, values := range f.params {
		if _, ok := reserved[key]; ok {
			continue
		}
		field, op := splitOperator(key)
		if !identRe.MatchString(field) {
			return nil, apperr.Validation("invalid filter field %q", field)
		}
		cmp := "="
		if op != "" {
			var ok bool
			if cmp, ok = operators[op]; !ok {
				return nil, apperr.Validation("unknown filter operator %q", op)
			}
		}
		for _, v := range values {
			tx = tx.Where(fmt.Sprintf("%s %s ?", field, cmp), v)
		}
	}
	return tx, nil
}

// Sort: "sort=-price,name"; без параметра — стабильный порядок по created_at,id.
func (f *Features) Sort(tx *gorm.DB) (*gorm.DB, error) {
	raw := f.params.Get("sort")
	if raw == "" {
		return tx.Order("created_at").Order("id"), nil
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		field := strings.TrimPrefix(part, "-")
		if !identRe.MatchString(field) {
			return nil, apperr.Validation("invalid sort field %q", field)
		}
		if desc {
			tx = tx.Order(field + " DESC")
		} else {
			tx = tx.Order(field)
		}
	}
	return tx, nil
}

// Fields: "fields=name,price" — allow-list колонок; id добавляется всегда.
func (f *Features) Fields(tx *gorm.DB) (*gorm.DB, error) {
	raw := f.params.Get("fields")
	if raw == "" {
		return tx, nil
	}
	cols := []string{"id"}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if !identRe.MatchString(part) {
			return nil, apperr.Validation("invalid projection field %q", part)
		}
		if part != "id" {
			cols = append(cols, part)
		}
	}
	return tx.Select(cols), nil
}

// Paginate: page (с 1) и limit → Offset/Limit.
func (f *Features) Paginate(tx *gorm.DB) (*gorm.DB, error) {
	page, err := intParam(f.params, "page", 1)
	if err != nil {
		return nil, err
	}
	limit, err := intParam(f.params, "limit", DefaultLimit)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, apperr.Validation("page must be >= 1")
	}
	if limit < 1 {
		return nil, apperr.Validation("limit must be >= 1")
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return tx.Offset((page - 1) * limit).Limit(limit), nil
}

func splitOperator(key string) (field, op string) {
	open := strings.IndexByte(key, '[')
	if open < 0 || !strings.HasSuffix(key, "]") {
		return key, ""
	}
	return key[:open], key[open+1 : len(key)-1]
}

func intParam(params url.Values, key string, def int) (int, error) {
	raw := params.Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("parameter %q must be a number", key)
	}
	return n, nil
}
