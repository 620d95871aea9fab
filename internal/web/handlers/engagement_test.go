package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/attendance-tracker/internal/database"
)

func TestEngagementHandler_RecordObservation(t *testing.T) {
	_, ledger := testStores(t)
	handler := NewEngagementHandler(ledger.Engagement(), testReconciler(ledger))

	req := jsonRequest(t, http.MethodPost, "/engagement", map[string]any{
		"student_id": 1,
		"date":       "2026-08-31",
		"score":      40,
	})
	rec := httptest.NewRecorder()
	handler.RecordObservation(rec, req)
	assertStatusCode(t, rec, http.StatusOK)

	// A later observation replaces the earlier one.
	req = jsonRequest(t, http.MethodPost, "/engagement", map[string]any{
		"student_id": 1,
		"date":       "2026-08-31",
		"score":      75,
	})
	rec = httptest.NewRecorder()
	handler.RecordObservation(rec, req)
	assertStatusCode(t, rec, http.StatusOK)

	scores, err := ledger.ListAllScores(context.Background())
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(scores) != 1 || scores[0].Score != 75 {
		t.Errorf("expected single score 75, got %+v", scores)
	}
}

func TestEngagementHandler_RecordObservationOutOfRange(t *testing.T) {
	_, ledger := testStores(t)
	handler := NewEngagementHandler(ledger.Engagement(), testReconciler(ledger))

	req := jsonRequest(t, http.MethodPost, "/engagement", map[string]any{
		"student_id": 1,
		"date":       "2026-08-31",
		"score":      120,
	})
	rec := httptest.NewRecorder()
	handler.RecordObservation(rec, req)

	assertStatusCode(t, rec, http.StatusBadRequest)
	assertJSONError(t, rec, "score must be between 0 and 100")
}

func TestEngagementHandler_StudentScores(t *testing.T) {
	_, ledger := testStores(t)
	handler := NewEngagementHandler(ledger.Engagement(), testReconciler(ledger))

	date, err := database.ParseDate("2026-08-31")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if err := ledger.Upsert(context.Background(), 1, date, 55); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	req := requestWithChiParams(
		httptest.NewRequest(http.MethodGet, "/students/1/engagement", nil),
		map[string]string{"id": "1"},
	)
	rec := httptest.NewRecorder()
	handler.StudentScores(rec, req)

	assertStatusCode(t, rec, http.StatusOK)
	var result struct {
		Scores []database.EngagementScore `json:"scores"`
	}
	parseJSONResponse(t, rec, &result)
	if len(result.Scores) != 1 || result.Scores[0].Score != 55 {
		t.Errorf("unexpected scores: %+v", result.Scores)
	}
}
