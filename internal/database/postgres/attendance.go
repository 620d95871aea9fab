package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/attendance-tracker/internal/database"
)

// AttendanceRepository provides PostgreSQL-backed attendance ledger storage.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

const attendanceColumns = `id, student_id, date, session_key, subject, year, term,
	slot, instructor, status, engagement_rating, created_at`

// SeedSession creates an Absent record for every student in the session's
// cohort. The uniqueness constraint on (student_id, date, session_key)
// makes re-opening the same session a no-op for already-seeded students,
// also under concurrent open attempts.
func (r *AttendanceRepository) SeedSession(ctx context.Context, session database.Session) (int, error) {
	query := `
		INSERT INTO attendance_records
			(student_id, date, session_key, subject, year, term, slot, instructor, status)
		SELECT s.id, $1, $2, $3, s.year, s.term, $4, $5, 'Absent'
		FROM students s
		WHERE s.year = $6 AND s.term = $7
		ON CONFLICT (student_id, date, session_key) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query,
		session.Date, session.Key, session.Subject, session.Slot, session.Instructor,
		session.Cohort.Year, session.Cohort.Term,
	)
	if err != nil {
		return 0, fmt.Errorf("seed session: %w", err)
	}

	created, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("seed session rows affected: %w", err)
	}
	return int(created), nil
}

// MarkPresent sets the record for (student, date, session key) to Present.
// A missing record is a silent no-op; repeated calls are idempotent.
func (r *AttendanceRepository) MarkPresent(ctx context.Context, studentID int64, date database.Date, sessionKey string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE attendance_records SET status = 'Present' WHERE student_id = $1 AND date = $2 AND session_key = $3",
		studentID, date, sessionKey,
	)
	if err != nil {
		return fmt.Errorf("mark present: %w", err)
	}
	return nil
}

// OverrideStatus sets any status on a record by id (manual override).
func (r *AttendanceRepository) OverrideStatus(ctx context.Context, recordID int64, status database.Status) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE attendance_records SET status = $1 WHERE id = $2", status, recordID,
	)
	if err != nil {
		return fmt.Errorf("override status: %w", err)
	}
	return requireRow(result)
}

// SetRating writes the rating label and upserts the numeric score for the
// record's (student, date) in a single transaction, so a reader never
// observes one write without the other.
func (r *AttendanceRepository) SetRating(ctx context.Context, recordID int64, rating database.Rating, score int) error {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var studentID int64
	var date database.Date
	err = tx.QueryRowContext(ctx, `
		UPDATE attendance_records SET engagement_rating = $1
		WHERE id = $2
		RETURNING student_id, date
	`, rating, recordID).Scan(&studentID, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return database.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("set rating: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO engagement_scores (student_id, date, score)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id, date) DO UPDATE SET
			score = EXCLUDED.score,
			updated_at = NOW()
	`, studentID, date, score)
	if err != nil {
		return fmt.Errorf("upsert rating score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rating: %w", err)
	}
	return nil
}

// Get retrieves a record by id, returns nil if not found.
func (r *AttendanceRepository) Get(ctx context.Context, id int64) (*database.AttendanceRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM attendance_records WHERE id = $1", attendanceColumns)

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query attendance record: %w", err)
	}
	return rec, nil
}

// HistoryByStudent retrieves a student's records, newest first.
func (r *AttendanceRepository) HistoryByStudent(ctx context.Context, studentID int64) ([]database.AttendanceRecord, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM attendance_records WHERE student_id = $1 ORDER BY date DESC, id DESC",
		attendanceColumns,
	)

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("query attendance history: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ListAll retrieves every record, newest first.
func (r *AttendanceRepository) ListAll(ctx context.Context) ([]database.AttendanceRecord, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM attendance_records ORDER BY date DESC, id DESC", attendanceColumns,
	)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query attendance records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ExportRows retrieves the export projection joined with student identity.
func (r *AttendanceRepository) ExportRows(ctx context.Context) ([]database.ExportRow, error) {
	query := `
		SELECT s.name, s.roll_no, a.date, a.status, a.subject, a.year, a.term,
		       a.slot, a.instructor
		FROM attendance_records a
		JOIN students s ON a.student_id = s.id
		ORDER BY a.date DESC, a.id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query export rows: %w", err)
	}
	defer rows.Close()

	var out []database.ExportRow
	for rows.Next() {
		var row database.ExportRow
		err := rows.Scan(&row.Name, &row.RollNo, &row.Date, &row.Status,
			&row.Subject, &row.Year, &row.Term, &row.Slot, &row.Instructor)
		if err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export rows: %w", err)
	}
	return out, nil
}

func scanRecord(row interface{ Scan(...any) error }) (*database.AttendanceRecord, error) {
	var rec database.AttendanceRecord
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.Date, &rec.SessionKey, &rec.Subject,
		&rec.Year, &rec.Term, &rec.Slot, &rec.Instructor, &rec.Status, &rec.Rating,
		&rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]database.AttendanceRecord, error) {
	var records []database.AttendanceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}
	return records, nil
}
