package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/kozaktomas/attendance-tracker/internal/database"
	"github.com/kozaktomas/attendance-tracker/internal/session"
)

// EngagementHandler handles engagement score endpoints.
type EngagementHandler struct {
	engagement database.EngagementReader
	reconciler *session.Reconciler
}

// NewEngagementHandler creates an engagement handler.
func NewEngagementHandler(engagement database.EngagementReader, reconciler *session.Reconciler) *EngagementHandler {
	return &EngagementHandler{
		engagement: engagement,
		reconciler: reconciler,
	}
}

// List handles GET /engagement
func (h *EngagementHandler) List(w http.ResponseWriter, r *http.Request) {
	scores, err := h.engagement.ListAll(r.Context())
	if err != nil {
		log.Printf("Failed to list engagement scores: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list engagement scores")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"scores": scores})
}

// StudentScores handles GET /students/{id}/engagement
func (h *EngagementHandler) StudentScores(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}

	scores, err := h.engagement.ListByStudent(r.Context(), id)
	if err != nil {
		log.Printf("Failed to load engagement for student %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to load engagement scores")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"scores": scores})
}

type recordObservationRequest struct {
	StudentID int64  `json:"student_id"`
	Date      string `json:"date"`
	Score     int    `json:"score"`
}

// RecordObservation handles POST /engagement. Stores one observed score
// for (student, date); a later observation replaces it.
func (h *EngagementHandler) RecordObservation(w http.ResponseWriter, r *http.Request) {
	var req recordObservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.StudentID <= 0 {
		respondError(w, http.StatusBadRequest, "student_id is required")
		return
	}
	if req.Score < 0 || req.Score > 100 {
		respondError(w, http.StatusBadRequest, "score must be between 0 and 100")
		return
	}
	date, err := database.ParseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	if err := h.reconciler.RecordObservation(r.Context(), req.StudentID, date, req.Score); err != nil {
		log.Printf("Failed to record engagement for student %d: %v", req.StudentID, err)
		respondError(w, http.StatusInternalServerError, "failed to record engagement")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}
