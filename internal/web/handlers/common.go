package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/matiasrios/facegate/internal/attendance"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps a rejection reason to an HTTP status. Business rejections
// are successful HTTP exchanges carrying ok=false; only malformed input and
// server-side failures use error statuses.
func statusFor(reason attendance.Reason) int {
	switch reason {
	case "":
		return http.StatusOK
	case attendance.ReasonInvalidInput:
		return http.StatusBadRequest
	case attendance.ReasonPersistenceFailure, attendance.ReasonInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
