package pipeline

import (
	"encoding/json"
	"net/http"
)

type envelope map[string]any

// JSON writes a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Success writes 200 with {"data": v}.
func Success(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, envelope{"data": v})
}

// Payload writes 200 with a pre-marshaled JSON body, e.g. from a memo cache.
func Payload(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Error writes a JSON error response: {"message": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, envelope{"message": msg})
}
