package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/attendance-tracker/internal/database"
)

// EngagementRepository provides PostgreSQL-backed engagement score storage.
type EngagementRepository struct {
	pool *Pool
}

// NewEngagementRepository creates a new PostgreSQL engagement repository.
func NewEngagementRepository(pool *Pool) *EngagementRepository {
	return &EngagementRepository{pool: pool}
}

// Upsert inserts or replaces the score for (student, date). The most
// recent sample wins; history is not retained.
func (r *EngagementRepository) Upsert(ctx context.Context, studentID int64, date database.Date, score int) error {
	query := `
		INSERT INTO engagement_scores (student_id, date, score)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id, date) DO UPDATE SET
			score = EXCLUDED.score,
			updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, studentID, date, score); err != nil {
		return fmt.Errorf("upsert engagement score: %w", err)
	}
	return nil
}

// Get retrieves the score for (student, date), returns nil if none exists.
func (r *EngagementRepository) Get(ctx context.Context, studentID int64, date database.Date) (*database.EngagementScore, error) {
	query := `
		SELECT id, student_id, date, score, updated_at
		FROM engagement_scores
		WHERE student_id = $1 AND date = $2
	`

	var score database.EngagementScore
	err := r.pool.QueryRow(ctx, query, studentID, date).Scan(
		&score.ID, &score.StudentID, &score.Date, &score.Score, &score.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query engagement score: %w", err)
	}
	return &score, nil
}

// ListByStudent retrieves all scores for a student, newest first.
func (r *EngagementRepository) ListByStudent(ctx context.Context, studentID int64) ([]database.EngagementScore, error) {
	query := `
		SELECT id, student_id, date, score, updated_at
		FROM engagement_scores
		WHERE student_id = $1
		ORDER BY date DESC
	`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("query engagement scores: %w", err)
	}
	defer rows.Close()

	return collectScores(rows)
}

// ListAll retrieves every score.
func (r *EngagementRepository) ListAll(ctx context.Context) ([]database.EngagementScore, error) {
	query := `
		SELECT id, student_id, date, score, updated_at
		FROM engagement_scores
		ORDER BY date DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query engagement scores: %w", err)
	}
	defer rows.Close()

	return collectScores(rows)
}

func collectScores(rows *sql.Rows) ([]database.EngagementScore, error) {
	var scores []database.EngagementScore
	for rows.Next() {
		var score database.EngagementScore
		err := rows.Scan(&score.ID, &score.StudentID, &score.Date, &score.Score, &score.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan engagement score: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate engagement scores: %w", err)
	}
	return scores, nil
}
