package stats

import (
	"context"
	"fmt"

	"github.com/kozaktomas/attendance-tracker/internal/database"
)

// Summary is the aggregated view for one student over a window. Rate and
// AverageEngagement are nil when the window holds no data for them.
type Summary struct {
	StudentID         int64         `json:"student_id"`
	Window            Window        `json:"window"`
	ReferenceDate     database.Date `json:"reference_date"`
	Records           int           `json:"records"`
	Attended          int           `json:"attended"`
	Rate              *int          `json:"rate"`
	Shortage          bool          `json:"shortage"`
	AverageEngagement *int          `json:"average_engagement"`
}

// Service computes summaries by reading the ledger.
type Service struct {
	attendance database.AttendanceReader
	engagement database.EngagementReader
	threshold  int
}

// NewService creates a stats service. threshold is the attendance
// percentage below which a shortage is flagged.
func NewService(attendance database.AttendanceReader, engagement database.EngagementReader, threshold int) *Service {
	return &Service{
		attendance: attendance,
		engagement: engagement,
		threshold:  threshold,
	}
}

// StudentSummary aggregates one student's attendance and engagement over
// the window ending at ref.
func (s *Service) StudentSummary(ctx context.Context, studentID int64, w Window, ref database.Date) (*Summary, error) {
	history, err := s.attendance.HistoryByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("could not load attendance history: %w", err)
	}
	scores, err := s.engagement.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("could not load engagement scores: %w", err)
	}

	records := FilterRecords(history, w, ref)
	windowScores := FilterScores(scores, w, ref)

	summary := &Summary{
		StudentID:     studentID,
		Window:        w,
		ReferenceDate: ref,
		Records:       len(records),
		Shortage:      Shortage(records, s.threshold),
	}
	if rate, ok := AttendanceRate(records); ok {
		summary.Rate = &rate
	}
	for _, rec := range records {
		if rec.Status == database.StatusPresent || rec.Status == database.StatusLate {
			summary.Attended++
		}
	}
	if avg, ok := AverageEngagement(windowScores); ok {
		summary.AverageEngagement = &avg
	}
	return summary, nil
}

// CohortSummary aggregates every student that has records in the window.
// The result maps student id to summary.
func (s *Service) CohortSummary(ctx context.Context, w Window, ref database.Date) (map[int64]*Summary, error) {
	all, err := s.attendance.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load attendance records: %w", err)
	}

	seen := make(map[int64]bool)
	out := make(map[int64]*Summary)
	for _, rec := range FilterRecords(all, w, ref) {
		if seen[rec.StudentID] {
			continue
		}
		seen[rec.StudentID] = true
		summary, err := s.StudentSummary(ctx, rec.StudentID, w, ref)
		if err != nil {
			return nil, err
		}
		out[rec.StudentID] = summary
	}
	return out, nil
}
