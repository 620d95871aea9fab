package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/kozaktomas/attendance-tracker/internal/database"
	"github.com/kozaktomas/attendance-tracker/internal/recognition"
	"github.com/kozaktomas/attendance-tracker/internal/session"
)

// maxFrameBytes bounds an uploaded camera frame.
const maxFrameBytes = 20 << 20

// SessionsHandler handles session lifecycle and frame ingestion.
type SessionsHandler struct {
	manager    *session.Manager
	reconciler *session.Reconciler
	resolver   *recognition.Resolver
	detector   session.Detector
}

// NewSessionsHandler creates a sessions handler. detector and resolver
// may be nil when the server runs without a recognition pipeline; frame
// ingestion then responds 503.
func NewSessionsHandler(manager *session.Manager, reconciler *session.Reconciler, resolver *recognition.Resolver, detector session.Detector) *SessionsHandler {
	return &SessionsHandler{
		manager:    manager,
		reconciler: reconciler,
		resolver:   resolver,
		detector:   detector,
	}
}

type openSessionRequest struct {
	Date       string `json:"date"`
	SessionKey string `json:"session_key"`
	Subject    string `json:"subject"`
	Year       string `json:"year"`
	Term       string `json:"term"`
	Slot       string `json:"slot"`
	Instructor string `json:"instructor"`
}

// Open handles POST /sessions/open. Seeds an Absent record for every
// student in the cohort; re-opening is a no-op for already-seeded rows.
func (h *SessionsHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	date, err := database.ParseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	result, err := h.manager.Open(r.Context(), database.Session{
		Date:       date,
		Key:        req.SessionKey,
		Subject:    req.Subject,
		Cohort:     database.Cohort{Year: req.Year, Term: req.Term},
		Slot:       req.Slot,
		Instructor: req.Instructor,
	})
	if err != nil {
		log.Printf("Failed to open session %s: %v", sanitizeForLog(req.SessionKey), err)
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if result.CohortSize == 0 {
		respondJSON(w, http.StatusOK, map[string]any{
			"created":     0,
			"cohort_size": 0,
			"notice":      "cohort has no enrolled students",
		})
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// frameMatch is one reconciled face from an ingested frame.
type frameMatch struct {
	StudentID int64 `json:"student_id"`
	Score     int   `json:"engagement_score"`
}

// IngestFrame handles POST /sessions/frame?date=&session_key=. The body
// is a JPEG frame; every detected face is resolved and reconciled into
// the ledger, mirroring one tick of the camera watch loop.
func (h *SessionsHandler) IngestFrame(w http.ResponseWriter, r *http.Request) {
	if h.detector == nil || h.resolver == nil {
		respondError(w, http.StatusServiceUnavailable, "recognition pipeline is not configured")
		return
	}

	sessionKey := r.URL.Query().Get("session_key")
	if sessionKey == "" {
		respondError(w, http.StatusBadRequest, "session_key query parameter is required")
		return
	}
	date, ok := queryDate(w, r, "date")
	if !ok {
		return
	}

	frame, err := io.ReadAll(io.LimitReader(r.Body, maxFrameBytes))
	if err != nil || len(frame) == 0 {
		respondError(w, http.StatusBadRequest, "frame body is required")
		return
	}

	faces, err := h.detector.Detect(r.Context(), frame)
	if err != nil {
		log.Printf("Failed to detect faces: %v", err)
		respondError(w, http.StatusBadGateway, "face detection failed")
		return
	}

	// Each face is reconciled independently. A failed write for one face
	// must not stop the others; failures are counted and the rest of the
	// frame still lands.
	matches := make([]frameMatch, 0, len(faces))
	unknown := 0
	failed := 0
	for _, face := range faces {
		studentID, found := h.resolver.Resolve(face.Descriptor)
		if !found {
			unknown++
			continue
		}

		score := recognition.Score(face.Expressions)
		if err := h.reconciler.MarkPresent(r.Context(), studentID, date, sessionKey); err != nil {
			log.Printf("Failed to mark student %d present: %v", studentID, err)
			failed++
			continue
		}
		if err := h.reconciler.RecordObservation(r.Context(), studentID, date, score); err != nil {
			log.Printf("Failed to record engagement for student %d: %v", studentID, err)
			failed++
			continue
		}
		matches = append(matches, frameMatch{StudentID: studentID, Score: score})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"faces":   len(faces),
		"matches": matches,
		"unknown": unknown,
		"errors":  failed,
	})
}
