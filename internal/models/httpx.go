package models

import (
	"encoding/json"
	"net/http"
)

// Единый формат ответов API: {"status": "...", "data"|"message": ...}.

type envelope struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Token   string `json:"token,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData — успешный ответ с полезной нагрузкой.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, envelope{Status: "success", Data: data})
}

// WriteList — успешный ответ списка с количеством результатов.
func WriteList(w http.ResponseWriter, results int, data any) {
	WriteJSON(w, http.StatusOK, envelope{Status: "success", Results: &results, Data: data})
}

// WriteToken — ответ логина/регистрации: токен + пользователь.
func WriteToken(w http.ResponseWriter, status int, token string, data any) {
	WriteJSON(w, status, envelope{Status: "success", Token: token, Data: data})
}

// WriteMessage — ответ без данных (например, "token sent to email").
func WriteMessage(w http.ResponseWriter, status int, state, msg string) {
	WriteJSON(w, status, envelope{Status: state, Message: msg})
}
