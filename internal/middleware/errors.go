package middleware

import (
	"encoding/json"
	"net/http"
)

// errorBody mirrors the error envelope written by the handlers.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
	Code       string `json:"code"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
		Code:       code,
	})
}
