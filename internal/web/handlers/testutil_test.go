package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/attendance-tracker/internal/config"
	"github.com/kozaktomas/attendance-tracker/internal/database"
	"github.com/kozaktomas/attendance-tracker/internal/database/mock"
	"github.com/kozaktomas/attendance-tracker/internal/session"
)

// testScoring creates the scoring policy used by handler tests.
func testScoring() *config.ScoringConfig {
	return &config.ScoringConfig{
		MatchThreshold:    0.6,
		ShortageThreshold: 75,
		RatingScores:      map[string]int{"High": 90, "Medium": 60, "Low": 30, "None": 0},
	}
}

// testStores creates a student store with three enrolled students and an
// empty ledger over it.
func testStores(t *testing.T) (*mock.StudentStore, *mock.Ledger) {
	t.Helper()
	students := mock.NewStudentStore()
	students.Add(database.Student{ID: 1, Name: "Ada", RollNo: "R001", Year: "2026", Term: "3"})
	students.Add(database.Student{ID: 2, Name: "Ben", RollNo: "R002", Year: "2026", Term: "3"})
	students.Add(database.Student{ID: 3, Name: "Cara", RollNo: "R003", Year: "2026", Term: "3"})
	return students, mock.NewLedger(students)
}

// testReconciler creates a reconciler over the given ledger.
func testReconciler(ledger *mock.Ledger) *session.Reconciler {
	return session.NewReconciler(ledger, ledger.Engagement(), testScoring())
}

// openTestSession seeds the standard test session and returns it.
func openTestSession(t *testing.T, students *mock.StudentStore, ledger *mock.Ledger) database.Session {
	t.Helper()
	date, err := database.ParseDate("2026-08-31")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	sess := database.Session{
		Date:       date,
		Key:        "morning-algorithms",
		Subject:    "Algorithms",
		Cohort:     database.Cohort{Year: "2026", Term: "3"},
		Slot:       "09:00",
		Instructor: "Dr. Vance",
	}
	if _, err := session.NewManager(students, ledger).Open(context.Background(), sess); err != nil {
		t.Fatalf("open session: %v", err)
	}
	return sess
}

// itoa formats an id for use as a chi URL parameter.
func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// jsonRequest creates a request with a JSON body.
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type.
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code.
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message.
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
