package database

import (
	"time"
)

// Status values for an attendance record. Absent is the seeded default,
// Present is written by the recognition pipeline, Late only by manual override.
type Status string

const (
	StatusAbsent  Status = "Absent"
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
)

// ValidStatus reports whether s is one of the known attendance statuses.
func ValidStatus(s Status) bool {
	return s == StatusAbsent || s == StatusPresent || s == StatusLate
}

// Rating labels an instructor can assign to a record's engagement.
type Rating string

const (
	RatingNone   Rating = "None"
	RatingLow    Rating = "Low"
	RatingMedium Rating = "Medium"
	RatingHigh   Rating = "High"
)

// ValidRating reports whether r is one of the known engagement ratings.
func ValidRating(r Rating) bool {
	return r == RatingNone || r == RatingLow || r == RatingMedium || r == RatingHigh
}

// QueryStatus tracks the lifecycle of a student query.
type QueryStatus string

const (
	QueryPending   QueryStatus = "Pending"
	QueryReviewed  QueryStatus = "Reviewed"
	QueryScheduled QueryStatus = "Meeting Scheduled"
	QueryResolved  QueryStatus = "Resolved"
)

// ValidQueryStatus reports whether s is one of the known query statuses.
func ValidQueryStatus(s QueryStatus) bool {
	return s == QueryPending || s == QueryReviewed || s == QueryScheduled || s == QueryResolved
}

// Cohort identifies a class population by enrollment year and term.
type Cohort struct {
	Year string `json:"year"`
	Term string `json:"term"`
}

// Empty reports whether either cohort field is missing.
func (c Cohort) Empty() bool {
	return c.Year == "" || c.Term == ""
}

// Student represents an enrolled student. Descriptor is the biometric
// template (nil before face enrollment); re-enrollment replaces it.
type Student struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	RollNo     string    `json:"roll_no"`
	Year       string    `json:"year"`
	Term       string    `json:"term"`
	Descriptor []float32 `json:"descriptor,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Session is the grouping key plus metadata for one class meeting.
// It is never stored as a row of its own; it exists as the set of
// attendance records sharing (date, session key).
type Session struct {
	Date       Date   `json:"date"`
	Key        string `json:"session_key"`
	Subject    string `json:"subject"`
	Cohort     Cohort `json:"cohort"`
	Slot       string `json:"slot"`
	Instructor string `json:"instructor"`
}

// AttendanceRecord is the ledger's atomic unit. At most one record exists
// per (student, date, session key), enforced by a database constraint.
type AttendanceRecord struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"student_id"`
	Date       Date      `json:"date"`
	SessionKey string    `json:"session_key"`
	Subject    string    `json:"subject"`
	Year       string    `json:"year"`
	Term       string    `json:"term"`
	Slot       string    `json:"slot"`
	Instructor string    `json:"instructor"`
	Status     Status    `json:"status"`
	Rating     Rating    `json:"engagement_rating"`
	CreatedAt  time.Time `json:"created_at"`
}

// EngagementScore is the most recent engagement sample for a student on a
// date. Writes replace the score in place; there is no time series.
type EngagementScore struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id"`
	Date      Date      `json:"date"`
	Score     int       `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentQuery is a student-to-instructor message. It shares storage with
// the attendance ledger but carries no reconciliation logic.
type StudentQuery struct {
	ID         int64       `json:"id"`
	StudentID  int64       `json:"student_id"`
	Instructor string      `json:"instructor"`
	Subject    string      `json:"subject"`
	QueryText  string      `json:"query_text"`
	Status     QueryStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

// ExportRow is the read-only projection of an attendance record joined
// with student identity, used by the CSV export. Internal ids are omitted.
type ExportRow struct {
	Name       string
	RollNo     string
	Date       Date
	Status     Status
	Subject    string
	Year       string
	Term       string
	Slot       string
	Instructor string
}
