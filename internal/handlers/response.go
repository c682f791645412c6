package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/messagely/server/internal/models"
)

// writeJSON serializes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the canonical error envelope
// {"error": {"message": ..., "status": ...}}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.NewErrorResponse(status, message))
}
