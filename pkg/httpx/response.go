package httpx

import (
	"encoding/json"
	"net/http"
)

// SuccessEnvelope is the uniform shape of every successful response.
type SuccessEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorEnvelope is the uniform shape of every failed response.
type ErrorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response with the given status code. It sets the
// Content-Type and no-store cache headers; token responses must never be
// cached.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess wraps data in the success envelope.
func WriteSuccess(w http.ResponseWriter, code int, message string, data any) {
	WriteJSON(w, code, SuccessEnvelope{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// WriteError wraps details in the error envelope.
func WriteError(w http.ResponseWriter, code int, message string, errs any) {
	WriteJSON(w, code, ErrorEnvelope{
		Status:  "error",
		Message: message,
		Errors:  errs,
	})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
