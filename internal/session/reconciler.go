package session

import (
	"context"
	"fmt"

	"github.com/kozaktomas/attendance-tracker/internal/config"
	"github.com/kozaktomas/attendance-tracker/internal/database"
)

// Reconciler folds recognition events and instructor actions into the
// attendance ledger. Every operation is safe to retry; the pipeline may
// deliver the same event many times per session.
type Reconciler struct {
	attendance database.AttendanceWriter
	engagement database.EngagementWriter
	scoring    *config.ScoringConfig
}

// NewReconciler creates a reconciler over the given stores.
func NewReconciler(attendance database.AttendanceWriter, engagement database.EngagementWriter, scoring *config.ScoringConfig) *Reconciler {
	return &Reconciler{
		attendance: attendance,
		engagement: engagement,
		scoring:    scoring,
	}
}

// MarkPresent flips the student's record for the session to Present.
// Subsequent sightings of the same student are no-ops, as is a sighting
// of a student whose session was never seeded.
func (r *Reconciler) MarkPresent(ctx context.Context, studentID int64, date database.Date, sessionKey string) error {
	if err := r.attendance.MarkPresent(ctx, studentID, date, sessionKey); err != nil {
		return fmt.Errorf("could not mark student %d present: %w", studentID, err)
	}
	return nil
}

// RecordObservation stores an automated engagement sample for the
// student on the given date. The newest sample replaces any earlier one.
func (r *Reconciler) RecordObservation(ctx context.Context, studentID int64, date database.Date, score int) error {
	if score < 0 || score > 100 {
		return fmt.Errorf("engagement score %d out of range [0,100]", score)
	}
	if err := r.engagement.Upsert(ctx, studentID, date, score); err != nil {
		return fmt.Errorf("could not record engagement for student %d: %w", studentID, err)
	}
	return nil
}

// SetRating applies an instructor's engagement rating to a record. The
// label is written to the record and its numeric equivalent replaces the
// student's engagement score for that date, atomically.
func (r *Reconciler) SetRating(ctx context.Context, recordID int64, rating database.Rating) error {
	if !database.ValidRating(rating) {
		return fmt.Errorf("unknown engagement rating %q", rating)
	}
	score := r.scoring.RatingScore(string(rating))
	if err := r.attendance.SetRating(ctx, recordID, rating, score); err != nil {
		return fmt.Errorf("could not rate record %d: %w", recordID, err)
	}
	return nil
}

// OverrideStatus lets an instructor correct a record by hand. This is
// the only path that can set Late.
func (r *Reconciler) OverrideStatus(ctx context.Context, recordID int64, status database.Status) error {
	if !database.ValidStatus(status) {
		return fmt.Errorf("unknown attendance status %q", status)
	}
	if err := r.attendance.OverrideStatus(ctx, recordID, status); err != nil {
		return fmt.Errorf("could not override record %d: %w", recordID, err)
	}
	return nil
}
