// Package session drives the attendance lifecycle of a class meeting:
// opening (seeding the ledger), reconciling recognition events into it,
// and watching a camera feed for the duration of the session.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/attendance-tracker/internal/database"
)

// Manager opens sessions by seeding the attendance ledger for a cohort.
type Manager struct {
	students   database.StudentReader
	attendance database.AttendanceWriter
}

// NewManager creates a session manager over the given stores.
func NewManager(students database.StudentReader, attendance database.AttendanceWriter) *Manager {
	return &Manager{
		students:   students,
		attendance: attendance,
	}
}

// OpenResult describes the outcome of opening a session.
type OpenResult struct {
	// Created is the number of newly seeded Absent records. Zero when the
	// session was already open for the whole cohort.
	Created int `json:"created"`
	// CohortSize is the number of students the cohort currently has.
	CohortSize int `json:"cohort_size"`
}

// Open seeds an Absent record for every student in the session's cohort.
// Re-opening an already open session is safe and creates nothing new;
// students who joined the cohort since the last open get their record
// backfilled. An empty cohort opens successfully with zero records.
func (m *Manager) Open(ctx context.Context, session database.Session) (*OpenResult, error) {
	if err := validateSession(session); err != nil {
		return nil, err
	}

	cohort, err := m.students.ListByCohort(ctx, session.Cohort)
	if err != nil {
		return nil, fmt.Errorf("could not load cohort: %w", err)
	}

	created, err := m.attendance.SeedSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("could not seed session: %w", err)
	}

	return &OpenResult{
		Created:    created,
		CohortSize: len(cohort),
	}, nil
}

func validateSession(session database.Session) error {
	if session.Date.IsZero() {
		return errors.New("session date is required")
	}
	if session.Key == "" {
		return errors.New("session key is required")
	}
	if session.Cohort.Empty() {
		return errors.New("cohort year and term are required")
	}
	return nil
}
