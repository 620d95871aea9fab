package export

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/kozaktomas/attendance-tracker/internal/database"
	"github.com/kozaktomas/attendance-tracker/internal/database/mock"
)

func TestWriteCSV(t *testing.T) {
	ctx := context.Background()
	students := mock.NewStudentStore()
	students.Add(database.Student{ID: 1, Name: "Ada Lovelace", RollNo: "R001", Year: "2026", Term: "3"})
	ledger := mock.NewLedger(students)

	date, err := database.ParseDate("2026-08-31")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	session := database.Session{
		Date:       date,
		Key:        "k1",
		Subject:    "Algorithms",
		Cohort:     database.Cohort{Year: "2026", Term: "3"},
		Slot:       "09:00",
		Instructor: "Dr. Vance",
	}
	if _, err := ledger.SeedSession(ctx, session); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := ledger.MarkPresent(ctx, 1, date, "k1"); err != nil {
		t.Fatalf("mark: %v", err)
	}

	var buf strings.Builder
	n, err := WriteCSV(ctx, ledger, &buf)
	if err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row written, got %d", n)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d rows", len(rows))
	}

	header := strings.Join(rows[0], ",")
	if header != "NAME,ROLL NO,DATE,STATUS,SUBJECT,YEAR,TERM,SLOT,INSTRUCTOR" {
		t.Errorf("unexpected header: %s", header)
	}

	want := []string{"Ada Lovelace", "R001", "2026-08-31", "Present", "Algorithms", "2026", "3", "09:00", "Dr. Vance"}
	for i, cell := range want {
		if rows[1][i] != cell {
			t.Errorf("column %d: expected %q, got %q", i, cell, rows[1][i])
		}
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	ctx := context.Background()
	ledger := mock.NewLedger(mock.NewStudentStore())

	var buf strings.Builder
	n, err := WriteCSV(ctx, ledger, &buf)
	if err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no rows, got %d", n)
	}
	if !strings.HasPrefix(buf.String(), "NAME,") {
		t.Error("expected header even with no rows")
	}
}
