// Package apperr — таксономия операционных ошибок API и их отображение
// в HTTP-статусы. Операционные ошибки уходят клиенту со своим сообщением,
// всё неклассифицированное — в лог, клиенту только generic-ответ.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

type Kind int

const (
	KindValidation Kind = iota + 1 // 400: нарушение формы/схемы
	KindCast                       // 400: некорректный идентификатор/тип
	KindUnauthenticated            // 401
	KindForbidden                  // 403
	KindNotFound                   // 404
	KindDuplicate                  // 409: нарушение уникальности
	KindDelivery                   // 502: не ушло письмо
	KindInternal                   // 500
)

func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindCast:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicate:
		return http.StatusConflict
	case KindDelivery:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error // причина (для лога), может быть nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error { return newf(KindValidation, format, args...) }
func Cast(format string, args ...any) *Error       { return newf(KindCast, format, args...) }
func Unauthenticated(format string, args ...any) *Error {
	return newf(KindUnauthenticated, format, args...)
}
func Forbidden(format string, args ...any) *Error { return newf(KindForbidden, format, args...) }
func NotFound(format string, args ...any) *Error  { return newf(KindNotFound, format, args...) }
func Duplicate(format string, args ...any) *Error { return newf(KindDuplicate, format, args...) }
func Delivery(msg string, cause error) *Error {
	return &Error{Kind: KindDelivery, Message: msg, Err: cause}
}
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "something went wrong", Err: cause}
}

// From классифицирует произвольную ошибку. Ошибки gorm переводятся
// в операционные виды, остальное считается внутренним сбоем.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("no document found with this id")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return Duplicate("duplicate field value, please use another value")
	}
	return Internal(err)
}

// IsOperational — всё, кроме внутреннего сбоя.
func (e *Error) IsOperational() bool { return e.Kind != KindInternal }
