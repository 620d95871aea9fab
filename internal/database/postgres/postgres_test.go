//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kozaktomas/attendance-tracker/internal/config"
	"github.com/kozaktomas/attendance-tracker/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := Initialize(&config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to initialize pool: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func enrollStudent(t *testing.T, repo *StudentRepository, name, rollNo string, withTemplate bool) int64 {
	t.Helper()
	student := &database.Student{
		Name:   name,
		RollNo: rollNo,
		Year:   "2nd Year",
		Term:   "Semester 3",
	}
	if withTemplate {
		student.Descriptor = make([]float32, 128)
		for i := range student.Descriptor {
			student.Descriptor[i] = float32(i) / 128.0
		}
	}
	id, err := repo.Create(context.Background(), student)
	if err != nil {
		t.Fatalf("enroll student %s: %v", name, err)
	}
	return id
}

func TestAttendanceRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	students := NewStudentRepository(pool)
	attendance := NewAttendanceRepository(pool)
	engagement := NewEngagementRepository(pool)

	idA := enrollStudent(t, students, "Alice", "R001", true)
	idB := enrollStudent(t, students, "Bob", "R002", false)
	enrollStudent(t, students, "Carol", "R003", false)

	date, _ := database.ParseDate("2026-03-02")
	session := database.Session{
		Date:       date,
		Key:        "SESS-1",
		Subject:    "Mathematics",
		Cohort:     database.Cohort{Year: "2nd Year", Term: "Semester 3"},
		Slot:       "Morning",
		Instructor: "Dr. Roy",
	}

	t.Run("SeedIsIdempotent", func(t *testing.T) {
		created, err := attendance.SeedSession(ctx, session)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		if created != 3 {
			t.Errorf("expected 3 created records, got %d", created)
		}

		created, err = attendance.SeedSession(ctx, session)
		if err != nil {
			t.Fatalf("second seed: %v", err)
		}
		if created != 0 {
			t.Errorf("expected second seed to create 0 records, got %d", created)
		}
	})

	t.Run("MarkPresentIdempotent", func(t *testing.T) {
		for range 3 {
			if err := attendance.MarkPresent(ctx, idA, date, session.Key); err != nil {
				t.Fatalf("mark present: %v", err)
			}
		}

		history, err := attendance.HistoryByStudent(ctx, idA)
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if len(history) != 1 {
			t.Fatalf("expected 1 record, got %d", len(history))
		}
		if history[0].Status != database.StatusPresent {
			t.Errorf("expected Present, got %s", history[0].Status)
		}
	})

	t.Run("MarkPresentUnseededIsNoop", func(t *testing.T) {
		otherDate, _ := database.ParseDate("2026-03-09")
		if err := attendance.MarkPresent(ctx, idB, otherDate, "SESS-UNKNOWN"); err != nil {
			t.Fatalf("unexpected error for unseeded tuple: %v", err)
		}

		history, err := attendance.HistoryByStudent(ctx, idB)
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if len(history) != 1 {
			t.Errorf("no-op should not create records, got %d", len(history))
		}
	})

	t.Run("EngagementUpsertReplacesInPlace", func(t *testing.T) {
		if err := engagement.Upsert(ctx, idA, date, 40); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		if err := engagement.Upsert(ctx, idA, date, 75); err != nil {
			t.Fatalf("second upsert: %v", err)
		}

		score, err := engagement.Get(ctx, idA, date)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if score == nil || score.Score != 75 {
			t.Fatalf("expected single row with score 75, got %+v", score)
		}

		all, err := engagement.ListByStudent(ctx, idA)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("expected exactly one score row, got %d", len(all))
		}
	})

	t.Run("SetRatingCouplesLabelAndScore", func(t *testing.T) {
		history, err := attendance.HistoryByStudent(ctx, idA)
		if err != nil || len(history) == 0 {
			t.Fatalf("history: %v", err)
		}
		recordID := history[0].ID

		if err := attendance.SetRating(ctx, recordID, database.RatingHigh, 90); err != nil {
			t.Fatalf("set rating: %v", err)
		}

		rec, err := attendance.Get(ctx, recordID)
		if err != nil {
			t.Fatalf("get record: %v", err)
		}
		if rec.Rating != database.RatingHigh {
			t.Errorf("expected rating High, got %s", rec.Rating)
		}

		score, err := engagement.Get(ctx, idA, date)
		if err != nil {
			t.Fatalf("get score: %v", err)
		}
		if score == nil || score.Score != 90 {
			t.Fatalf("expected coupled score 90, got %+v", score)
		}
	})

	t.Run("SetRatingUnknownRecord", func(t *testing.T) {
		err := attendance.SetRating(ctx, 999999, database.RatingLow, 30)
		if err != database.ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ExportRowsJoinStudents", func(t *testing.T) {
		rows, err := attendance.ExportRows(ctx)
		if err != nil {
			t.Fatalf("export rows: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected 3 export rows, got %d", len(rows))
		}
		for _, row := range rows {
			if row.Name == "" || row.RollNo == "" {
				t.Errorf("export row missing student identity: %+v", row)
			}
		}
	})
}

func TestStudentRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	students := NewStudentRepository(pool)

	id := enrollStudent(t, students, "Dana", "R010", true)

	t.Run("DuplicateRollNo", func(t *testing.T) {
		_, err := students.Create(ctx, &database.Student{
			Name: "Copy", RollNo: "R010", Year: "2nd Year", Term: "Semester 3",
		})
		if err != database.ErrDuplicate {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("TemplateRoundTrip", func(t *testing.T) {
		st, err := students.Get(ctx, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(st.Descriptor) != 128 {
			t.Fatalf("expected 128-dim descriptor, got %d", len(st.Descriptor))
		}
	})

	t.Run("ReplaceDescriptorOverwrites", func(t *testing.T) {
		replacement := make([]float32, 128)
		replacement[0] = 1
		if err := students.ReplaceDescriptor(ctx, id, replacement); err != nil {
			t.Fatalf("replace: %v", err)
		}

		st, err := students.Get(ctx, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if st.Descriptor[0] != 1 {
			t.Errorf("expected replaced descriptor, got %f", st.Descriptor[0])
		}
	})

	t.Run("ListTemplatesSkipsUnenrolled", func(t *testing.T) {
		enrollStudent(t, students, "NoFace", "R011", false)

		templates, err := students.ListTemplates(ctx)
		if err != nil {
			t.Fatalf("list templates: %v", err)
		}
		for _, st := range templates {
			if len(st.Descriptor) == 0 {
				t.Errorf("student %d has no template but was listed", st.ID)
			}
		}
	})
}
