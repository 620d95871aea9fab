package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/kozaktomas/attendance-tracker/internal/database"
)

// QueriesHandler handles student query endpoints.
type QueriesHandler struct {
	queries database.QueryStore
}

// NewQueriesHandler creates a queries handler.
func NewQueriesHandler(queries database.QueryStore) *QueriesHandler {
	return &QueriesHandler{queries: queries}
}

type createQueryRequest struct {
	StudentID  int64  `json:"student_id"`
	Instructor string `json:"instructor"`
	Subject    string `json:"subject"`
	QueryText  string `json:"query_text"`
}

// Create handles POST /queries
func (h *QueriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.StudentID <= 0 || req.QueryText == "" {
		respondError(w, http.StatusBadRequest, "student_id and query_text are required")
		return
	}

	id, err := h.queries.Create(r.Context(), &database.StudentQuery{
		StudentID:  req.StudentID,
		Instructor: req.Instructor,
		Subject:    req.Subject,
		QueryText:  req.QueryText,
	})
	if err != nil {
		log.Printf("Failed to create query: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create query")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// List handles GET /queries
func (h *QueriesHandler) List(w http.ResponseWriter, r *http.Request) {
	queries, err := h.queries.ListAll(r.Context())
	if err != nil {
		log.Printf("Failed to list queries: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list queries")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"queries": queries})
}

// StudentQueries handles GET /students/{id}/queries
func (h *QueriesHandler) StudentQueries(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}

	queries, err := h.queries.ListByStudent(r.Context(), id)
	if err != nil {
		log.Printf("Failed to list queries for student %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to list queries")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"queries": queries})
}

type updateQueryStatusRequest struct {
	Status database.QueryStatus `json:"status"`
}

// UpdateStatus handles PUT /queries/{id}/status
func (h *QueriesHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}

	var req updateQueryStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if !database.ValidQueryStatus(req.Status) {
		respondError(w, http.StatusBadRequest, "unknown query status")
		return
	}

	if err := h.queries.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "query not found")
			return
		}
		log.Printf("Failed to update query %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to update query")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
