package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	HealthCheck(rec, req)

	assertStatusCode(t, rec, http.StatusOK)
	var result map[string]string
	parseJSONResponse(t, rec, &result)
	if result["status"] != "ok" {
		t.Errorf("expected status ok, got %s", result["status"])
	}
}

func TestURLParamID(t *testing.T) {
	tests := []struct {
		raw    string
		wantOK bool
		wantID int64
	}{
		{"17", true, 17},
		{"0", false, 0},
		{"-3", false, 0},
		{"abc", false, 0},
		{"", false, 0},
	}

	for _, tt := range tests {
		req := requestWithChiParams(
			httptest.NewRequest(http.MethodGet, "/x", nil),
			map[string]string{"id": tt.raw},
		)
		rec := httptest.NewRecorder()
		id, ok := urlParamID(rec, req, "id")
		if ok != tt.wantOK || id != tt.wantID {
			t.Errorf("urlParamID(%q) = (%d, %v), want (%d, %v)", tt.raw, id, ok, tt.wantID, tt.wantOK)
		}
		if !tt.wantOK && rec.Code != http.StatusBadRequest {
			t.Errorf("urlParamID(%q): expected 400 response, got %d", tt.raw, rec.Code)
		}
	}
}

func TestQueryDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?date=2026-08-31", nil)
	rec := httptest.NewRecorder()
	date, ok := queryDate(rec, req, "date")
	if !ok || date.String() != "2026-08-31" {
		t.Errorf("expected parsed date, got (%s, %v)", date, ok)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	rec = httptest.NewRecorder()
	if _, ok := queryDate(rec, req, "date"); !ok {
		t.Error("expected missing date to default to today")
	}

	req = httptest.NewRequest(http.MethodGet, "/x?date=yesterday", nil)
	rec = httptest.NewRecorder()
	if _, ok := queryDate(rec, req, "date"); ok {
		t.Error("expected malformed date to fail")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSanitizeForLog(t *testing.T) {
	if got := sanitizeForLog("line1\nline2\rline3"); got != "line1line2line3" {
		t.Errorf("unexpected sanitized value %q", got)
	}
}
