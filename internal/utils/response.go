package utils

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func Error(w http.ResponseWriter, status int, err string) {
	JSON(w, status, APIResponse{Success: false, Error: err})
}

// FieldError renders a validation or conflict error next to the offending
// field, the way the client shows inline form errors.
func FieldError(w http.ResponseWriter, status int, field, err string) {
	JSON(w, status, APIResponse{Success: false, Field: field, Error: err})
}

func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, APIResponse{Success: true, Message: msg})
}
