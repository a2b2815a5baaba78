package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hookstash/hookstash/internal/handler/dto"
)

// writeError writes a JSON error response in the API's standard shape.
// The message must never contain credentials or token values.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:      message,
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}
