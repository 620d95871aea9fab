package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kozaktomas/attendance-tracker/internal/database"
)

// QueryRepository provides PostgreSQL-backed student query storage.
type QueryRepository struct {
	pool *Pool
}

// NewQueryRepository creates a new PostgreSQL query repository.
func NewQueryRepository(pool *Pool) *QueryRepository {
	return &QueryRepository{pool: pool}
}

// Create stores a new query with Pending status.
func (r *QueryRepository) Create(ctx context.Context, query *database.StudentQuery) (int64, error) {
	stmt := `
		INSERT INTO student_queries (student_id, instructor, subject, query_text)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, stmt,
		query.StudentID, query.Instructor, query.Subject, query.QueryText,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert student query: %w", err)
	}
	return id, nil
}

// ListByStudent retrieves a student's queries, newest first.
func (r *QueryRepository) ListByStudent(ctx context.Context, studentID int64) ([]database.StudentQuery, error) {
	stmt := `
		SELECT id, student_id, instructor, subject, query_text, status, created_at
		FROM student_queries
		WHERE student_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, stmt, studentID)
	if err != nil {
		return nil, fmt.Errorf("query student queries: %w", err)
	}
	defer rows.Close()

	return collectQueries(rows)
}

// ListAll retrieves every query, newest first.
func (r *QueryRepository) ListAll(ctx context.Context) ([]database.StudentQuery, error) {
	stmt := `
		SELECT id, student_id, instructor, subject, query_text, status, created_at
		FROM student_queries
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query student queries: %w", err)
	}
	defer rows.Close()

	return collectQueries(rows)
}

// UpdateStatus moves a query through its lifecycle.
func (r *QueryRepository) UpdateStatus(ctx context.Context, queryID int64, status database.QueryStatus) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE student_queries SET status = $1 WHERE id = $2", status, queryID,
	)
	if err != nil {
		return fmt.Errorf("update query status: %w", err)
	}
	return requireRow(result)
}

func collectQueries(rows *sql.Rows) ([]database.StudentQuery, error) {
	var queries []database.StudentQuery
	for rows.Next() {
		var q database.StudentQuery
		err := rows.Scan(&q.ID, &q.StudentID, &q.Instructor, &q.Subject,
			&q.QueryText, &q.Status, &q.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan student query: %w", err)
		}
		queries = append(queries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate student queries: %w", err)
	}
	return queries, nil
}
