// Package handlers implements the HTTP handlers of the attendance API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/attendance-tracker/internal/database"
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

// urlParamID parses a chi URL parameter as an int64 id. Writes a 400
// response and returns false when the parameter is missing or malformed.
func urlParamID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryDate parses an optional date query parameter, defaulting to today.
// Writes a 400 response and returns false on a malformed value.
func queryDate(w http.ResponseWriter, r *http.Request, name string) (database.Date, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return database.Today(), true
	}
	date, err := database.ParseDate(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid "+name+", expected YYYY-MM-DD")
		return database.Date{}, false
	}
	return date, true
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
