package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExportHandler_CSV(t *testing.T) {
	students, ledger := testStores(t)
	sess := openTestSession(t, students, ledger)
	if err := ledger.MarkPresent(context.Background(), 1, sess.Date, sess.Key); err != nil {
		t.Fatalf("mark: %v", err)
	}

	handler := NewExportHandler(ledger)
	req := httptest.NewRequest(http.MethodGet, "/export/attendance.csv", nil)
	rec := httptest.NewRecorder()
	handler.CSV(rec, req)

	assertStatusCode(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("unexpected content type %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attendance.csv") {
		t.Errorf("unexpected content disposition %s", cd)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "NAME,ROLL NO,DATE,STATUS") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	found := false
	for _, line := range lines[1:] {
		if strings.Contains(line, "Ada") && strings.Contains(line, "Present") {
			found = true
		}
	}
	if !found {
		t.Error("expected a Present row for Ada")
	}
}
