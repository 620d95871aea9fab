package database

import (
	"context"
	"errors"
)

// ErrDuplicate is returned when an insert hits a uniqueness constraint
// (e.g., enrolling a roll number twice).
var ErrDuplicate = errors.New("duplicate record")

// ErrNotFound is returned when an operation targets a record that does not
// exist and the caller needs to know (e.g., rating a deleted record).
// Reconciliation operations that tolerate missing records do NOT return it.
var ErrNotFound = errors.New("record not found")

// StudentReader provides read-only access to enrolled students.
type StudentReader interface {
	// Get retrieves a student by id, returns nil if not found
	Get(ctx context.Context, id int64) (*Student, error)
	// ListByCohort retrieves all students matching the cohort exactly
	ListByCohort(ctx context.Context, cohort Cohort) ([]Student, error)
	// ListTemplates retrieves all students that have a biometric template
	ListTemplates(ctx context.Context) ([]Student, error)
}

// StudentWriter provides write access to student enrollment.
type StudentWriter interface {
	StudentReader

	// Create enrolls a new student. Returns ErrDuplicate if the roll number
	// is already taken.
	Create(ctx context.Context, student *Student) (int64, error)
	// UpdateProfile updates name and cohort. Returns ErrNotFound for an
	// unknown id.
	UpdateProfile(ctx context.Context, id int64, name string, cohort Cohort) error
	// ReplaceDescriptor overwrites the biometric template (re-enrollment
	// replaces, never merges). Returns ErrNotFound for an unknown id.
	ReplaceDescriptor(ctx context.Context, id int64, descriptor []float32) error
}

// AttendanceReader provides read-only access to the attendance ledger.
type AttendanceReader interface {
	// Get retrieves a record by id, returns nil if not found
	Get(ctx context.Context, id int64) (*AttendanceRecord, error)
	// HistoryByStudent retrieves a student's records, newest first
	HistoryByStudent(ctx context.Context, studentID int64) ([]AttendanceRecord, error)
	// ListAll retrieves every record, newest first
	ListAll(ctx context.Context) ([]AttendanceRecord, error)
	// ExportRows retrieves the export projection joined with student identity
	ExportRows(ctx context.Context) ([]ExportRow, error)
}

// AttendanceWriter provides write access to the attendance ledger.
// All mutations are safe to retry; duplicate calls never error.
type AttendanceWriter interface {
	AttendanceReader

	// SeedSession creates an Absent record for every student in the session's
	// cohort, skipping key tuples that already have one. Returns the number
	// of newly created records.
	SeedSession(ctx context.Context, session Session) (int, error)
	// MarkPresent sets the record for (student, date, session key) to
	// Present. A missing record is a silent no-op: recognition events may
	// race ahead of seeding.
	MarkPresent(ctx context.Context, studentID int64, date Date, sessionKey string) error
	// OverrideStatus sets any status on a record by id (manual override).
	// Returns ErrNotFound for an unknown id.
	OverrideStatus(ctx context.Context, recordID int64, status Status) error
	// SetRating writes the rating label and upserts the numeric score for
	// the record's (student, date) in a single transaction. A reader never
	// observes one write without the other. Returns ErrNotFound for an
	// unknown id.
	SetRating(ctx context.Context, recordID int64, rating Rating, score int) error
}

// EngagementReader provides read-only access to engagement scores.
type EngagementReader interface {
	// Get retrieves the score for (student, date), returns nil if none exists
	Get(ctx context.Context, studentID int64, date Date) (*EngagementScore, error)
	// ListByStudent retrieves all scores for a student, newest first
	ListByStudent(ctx context.Context, studentID int64) ([]EngagementScore, error)
	// ListAll retrieves every score
	ListAll(ctx context.Context) ([]EngagementScore, error)
}

// EngagementWriter provides write access to engagement scores.
type EngagementWriter interface {
	EngagementReader

	// Upsert inserts or replaces the score for (student, date).
	// The most recent sample wins; history is not retained.
	Upsert(ctx context.Context, studentID int64, date Date, score int) error
}

// QueryStore provides access to student queries.
type QueryStore interface {
	// Create stores a new query with Pending status
	Create(ctx context.Context, query *StudentQuery) (int64, error)
	// ListByStudent retrieves a student's queries, newest first
	ListByStudent(ctx context.Context, studentID int64) ([]StudentQuery, error)
	// ListAll retrieves every query, newest first
	ListAll(ctx context.Context) ([]StudentQuery, error)
	// UpdateStatus moves a query through its lifecycle. Returns ErrNotFound
	// for an unknown id.
	UpdateStatus(ctx context.Context, queryID int64, status QueryStatus) error
}
