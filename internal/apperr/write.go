package apperr

import (
	"net/http"

	"natours/internal/logs"
	"natours/internal/middleware"
	"natours/internal/models"
)

// Write — центральная точка отдачи ошибок клиенту.
// 4xx → status "fail", 5xx → status "error" (как и весь остальной API).
// Внутренние сбои логируются с reqid, наружу уходит generic-сообщение.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	e := From(err)
	status := e.Kind.HTTPStatus()

	state := "error"
	if status < 500 {
		state = "fail"
	}

	if !e.IsOperational() {
		logs.Logger.Errorf("unhandled error: %v reqid=%s uri=%s method=%s",
			e.Err, middleware.GetRequestID(r), r.RequestURI, r.Method)
		models.WriteMessage(w, status, state, "something went wrong")
		return
	}

	if e.Kind == KindDelivery && e.Err != nil {
		logs.Logger.Errorf("mail delivery failed: %v reqid=%s", e.Err, middleware.GetRequestID(r))
	}
	models.WriteMessage(w, status, state, e.Message)
}
