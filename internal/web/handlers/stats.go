package handlers

import (
	"log"
	"net/http"

	"github.com/kozaktomas/attendance-tracker/internal/stats"
)

// StatsHandler handles aggregation endpoints.
type StatsHandler struct {
	service *stats.Service
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(service *stats.Service) *StatsHandler {
	return &StatsHandler{service: service}
}

// parseWindow reads the window query parameter, defaulting to weekly.
func parseWindow(w http.ResponseWriter, r *http.Request) (stats.Window, bool) {
	raw := r.URL.Query().Get("window")
	if raw == "" {
		return stats.WindowWeekly, true
	}
	window, err := stats.ParseWindow(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown window, expected daily, weekly or monthly")
		return "", false
	}
	return window, true
}

// StudentSummary handles GET /students/{id}/stats?window=&date=
func (h *StatsHandler) StudentSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}
	window, ok := parseWindow(w, r)
	if !ok {
		return
	}
	ref, ok := queryDate(w, r, "date")
	if !ok {
		return
	}

	summary, err := h.service.StudentSummary(r.Context(), id, window, ref)
	if err != nil {
		log.Printf("Failed to compute summary for student %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// CohortSummary handles GET /stats/cohort?window=&date=
func (h *StatsHandler) CohortSummary(w http.ResponseWriter, r *http.Request) {
	window, ok := parseWindow(w, r)
	if !ok {
		return
	}
	ref, ok := queryDate(w, r, "date")
	if !ok {
		return
	}

	summaries, err := h.service.CohortSummary(r.Context(), window, ref)
	if err != nil {
		log.Printf("Failed to compute cohort summary: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to compute cohort summary")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"summaries": summaries})
}
