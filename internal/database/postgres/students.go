package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/attendance-tracker/internal/database"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// StudentRepository provides PostgreSQL-backed student storage.
type StudentRepository struct {
	pool *Pool
}

// NewStudentRepository creates a new PostgreSQL student repository.
func NewStudentRepository(pool *Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

const studentColumns = "id, name, roll_no, year, term, descriptor, created_at"

// scanStudent scans one student row including the nullable descriptor.
func scanStudent(row interface{ Scan(...any) error }) (*database.Student, error) {
	var st database.Student
	var vec sql.Null[pgvector.Vector]

	err := row.Scan(&st.ID, &st.Name, &st.RollNo, &st.Year, &st.Term, &vec, &st.CreatedAt)
	if err != nil {
		return nil, err
	}
	if vec.Valid {
		st.Descriptor = vec.V.Slice()
	}
	return &st, nil
}

// Get retrieves a student by id, returns nil if not found.
func (r *StudentRepository) Get(ctx context.Context, id int64) (*database.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)

	st, err := scanStudent(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query student: %w", err)
	}
	return st, nil
}

// ListByCohort retrieves all students matching the cohort exactly.
func (r *StudentRepository) ListByCohort(ctx context.Context, cohort database.Cohort) ([]database.Student, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM students WHERE year = $1 AND term = $2 ORDER BY id", studentColumns,
	)

	rows, err := r.pool.Query(ctx, query, cohort.Year, cohort.Term)
	if err != nil {
		return nil, fmt.Errorf("query cohort students: %w", err)
	}
	defer rows.Close()

	return collectStudents(rows)
}

// ListTemplates retrieves all students that have a biometric template.
// Ordering by id keeps nearest-neighbor tie-breaking deterministic.
func (r *StudentRepository) ListTemplates(ctx context.Context) ([]database.Student, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM students WHERE descriptor IS NOT NULL ORDER BY id", studentColumns,
	)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query student templates: %w", err)
	}
	defer rows.Close()

	return collectStudents(rows)
}

func collectStudents(rows *sql.Rows) ([]database.Student, error) {
	var students []database.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

// Create enrolls a new student. Returns database.ErrDuplicate if the roll
// number is already taken.
func (r *StudentRepository) Create(ctx context.Context, student *database.Student) (int64, error) {
	query := `
		INSERT INTO students (name, roll_no, year, term, descriptor)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var descriptor any
	if len(student.Descriptor) > 0 {
		descriptor = pgvector.NewVector(student.Descriptor)
	}

	var id int64
	err := r.pool.QueryRow(ctx, query,
		student.Name, student.RollNo, student.Year, student.Term, descriptor,
	).Scan(&id)
	if isUniqueViolation(err) {
		return 0, database.ErrDuplicate
	}
	if err != nil {
		return 0, fmt.Errorf("insert student: %w", err)
	}
	return id, nil
}

// UpdateProfile updates name and cohort. Returns database.ErrNotFound for
// an unknown id.
func (r *StudentRepository) UpdateProfile(ctx context.Context, id int64, name string, cohort database.Cohort) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE students SET name = $1, year = $2, term = $3 WHERE id = $4",
		name, cohort.Year, cohort.Term, id,
	)
	if err != nil {
		return fmt.Errorf("update student profile: %w", err)
	}
	return requireRow(result)
}

// ReplaceDescriptor overwrites the biometric template. Re-enrollment
// replaces the previous template, it never merges.
func (r *StudentRepository) ReplaceDescriptor(ctx context.Context, id int64, descriptor []float32) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE students SET descriptor = $1 WHERE id = $2",
		pgvector.NewVector(descriptor), id,
	)
	if err != nil {
		return fmt.Errorf("update student descriptor: %w", err)
	}
	return requireRow(result)
}

// requireRow converts a zero-row update into database.ErrNotFound.
func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return database.ErrNotFound
	}
	return nil
}
