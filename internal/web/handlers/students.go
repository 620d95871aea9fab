package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/kozaktomas/attendance-tracker/internal/database"
	"github.com/kozaktomas/attendance-tracker/internal/recognition"
)

// StudentsHandler handles student enrollment endpoints.
type StudentsHandler struct {
	students database.StudentWriter
	resolver *recognition.Resolver
	dim      int
}

// NewStudentsHandler creates a students handler. resolver may be nil when
// the server runs without a recognition pipeline.
func NewStudentsHandler(students database.StudentWriter, resolver *recognition.Resolver, dim int) *StudentsHandler {
	return &StudentsHandler{
		students: students,
		resolver: resolver,
		dim:      dim,
	}
}

// List handles GET /students?year=&term=
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	cohort := database.Cohort{
		Year: r.URL.Query().Get("year"),
		Term: r.URL.Query().Get("term"),
	}
	if cohort.Empty() {
		respondError(w, http.StatusBadRequest, "year and term query parameters are required")
		return
	}

	students, err := h.students.ListByCohort(r.Context(), cohort)
	if err != nil {
		log.Printf("Failed to list students: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list students")
		return
	}

	// Templates are not part of the listing payload.
	for i := range students {
		students[i].Descriptor = nil
	}
	respondJSON(w, http.StatusOK, map[string]any{"students": students})
}

// Get handles GET /students/{id}
func (h *StudentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}

	student, err := h.students.Get(r.Context(), id)
	if err != nil {
		log.Printf("Failed to get student %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to get student")
		return
	}
	if student == nil {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}

	enrolled := len(student.Descriptor) > 0
	student.Descriptor = nil
	respondJSON(w, http.StatusOK, map[string]any{
		"student":       student,
		"face_enrolled": enrolled,
	})
}

type createStudentRequest struct {
	Name   string `json:"name"`
	RollNo string `json:"roll_no"`
	Year   string `json:"year"`
	Term   string `json:"term"`
}

// Create handles POST /students
func (h *StudentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name == "" || req.RollNo == "" {
		respondError(w, http.StatusBadRequest, "name and roll_no are required")
		return
	}
	if (database.Cohort{Year: req.Year, Term: req.Term}).Empty() {
		respondError(w, http.StatusBadRequest, "year and term are required")
		return
	}

	student := &database.Student{
		Name:   req.Name,
		RollNo: req.RollNo,
		Year:   req.Year,
		Term:   req.Term,
	}
	id, err := h.students.Create(r.Context(), student)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			respondError(w, http.StatusConflict, "roll number already enrolled")
			return
		}
		log.Printf("Failed to create student: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create student")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"id": id})
}

type updateStudentRequest struct {
	Name string `json:"name"`
	Year string `json:"year"`
	Term string `json:"term"`
}

// Update handles PUT /students/{id}
func (h *StudentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}

	var req updateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	cohort := database.Cohort{Year: req.Year, Term: req.Term}
	if req.Name == "" || cohort.Empty() {
		respondError(w, http.StatusBadRequest, "name, year and term are required")
		return
	}

	if err := h.students.UpdateProfile(r.Context(), id, req.Name, cohort); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "student not found")
			return
		}
		log.Printf("Failed to update student %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to update student")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type enrollFaceRequest struct {
	Descriptor []float32 `json:"descriptor"`
}

// EnrollFace handles PUT /students/{id}/descriptor. Re-enrollment
// replaces the previous template.
func (h *StudentsHandler) EnrollFace(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(w, r, "id")
	if !ok {
		return
	}

	var req enrollFaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if len(req.Descriptor) != h.dim {
		respondError(w, http.StatusBadRequest, "descriptor has wrong dimensionality")
		return
	}

	if err := h.students.ReplaceDescriptor(r.Context(), id, req.Descriptor); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "student not found")
			return
		}
		log.Printf("Failed to enroll face for student %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to enroll face")
		return
	}

	h.refreshTemplates(r)
	respondJSON(w, http.StatusOK, map[string]string{"status": "enrolled"})
}

// refreshTemplates reloads the resolver's template set after an
// enrollment change so a running recognition loop picks it up.
func (h *StudentsHandler) refreshTemplates(r *http.Request) {
	if h.resolver == nil {
		return
	}
	templates, err := h.students.ListTemplates(r.Context())
	if err != nil {
		log.Printf("Failed to refresh templates: %v", err)
		return
	}
	h.resolver.SetTemplates(templates)
}
