package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/kozaktomas/attendance-tracker/internal/database"
	"github.com/kozaktomas/attendance-tracker/internal/session"
)

// AttendanceHandler handles attendance ledger endpoints.
type AttendanceHandler struct {
	attendance database.AttendanceReader
	reconciler *session.Reconciler
}

// NewAttendanceHandler creates an attendance handler.
func NewAttendanceHandler(attendance database.AttendanceReader, reconciler *session.Reconciler) *AttendanceHandler {
	return &AttendanceHandler{
		attendance: attendance,
		reconciler: reconciler,
	}
}

// List handles GET /attendance
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.attendance.ListAll(r.Context())
	if err != nil {
		log.Printf("Failed to list attendance records: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list attendance records")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"records": records})
}

// StudentHistory handles GET /students/{id}/attendance
func (h *AttendanceHandler) StudentHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}

	records, err := h.attendance.HistoryByStudent(r.Context(), id)
	if err != nil {
		log.Printf("Failed to load history for student %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to load attendance history")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"records": records})
}

type markPresentRequest struct {
	StudentID  int64  `json:"student_id"`
	Date       string `json:"date"`
	SessionKey string `json:"session_key"`
}

// MarkPresent handles POST /attendance/mark. Repeated calls for the same
// sighting are no-ops, as are calls for an unseeded session.
func (h *AttendanceHandler) MarkPresent(w http.ResponseWriter, r *http.Request) {
	var req markPresentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.StudentID <= 0 || req.SessionKey == "" {
		respondError(w, http.StatusBadRequest, "student_id and session_key are required")
		return
	}
	date, err := database.ParseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	if err := h.reconciler.MarkPresent(r.Context(), req.StudentID, date, req.SessionKey); err != nil {
		log.Printf("Failed to mark student %d present: %v", req.StudentID, err)
		respondError(w, http.StatusInternalServerError, "failed to mark present")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "marked"})
}

type overrideStatusRequest struct {
	Status database.Status `json:"status"`
}

// OverrideStatus handles PUT /attendance/{id}/status. The manual path;
// the only way a record becomes Late.
func (h *AttendanceHandler) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}

	var req overrideStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if !database.ValidStatus(req.Status) {
		respondError(w, http.StatusBadRequest, "unknown attendance status")
		return
	}

	if err := h.reconciler.OverrideStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "attendance record not found")
			return
		}
		log.Printf("Failed to override record %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to override status")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "overridden"})
}

type setRatingRequest struct {
	Rating database.Rating `json:"rating"`
}

// SetRating handles PUT /attendance/{id}/rating. Writes the label and
// its numeric score together.
func (h *AttendanceHandler) SetRating(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}

	var req setRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if !database.ValidRating(req.Rating) {
		respondError(w, http.StatusBadRequest, "unknown engagement rating")
		return
	}

	if err := h.reconciler.SetRating(r.Context(), id, req.Rating); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "attendance record not found")
			return
		}
		log.Printf("Failed to rate record %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to set rating")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "rated"})
}
