// Package stats derives attendance and engagement statistics from the
// ledger. Everything here is a pure computation over already-loaded
// records; nothing mutates storage.
package stats

import (
	"fmt"
	"math"

	"github.com/kozaktomas/attendance-tracker/internal/database"
)

// Window selects records by how far back from a reference date they fall.
type Window string

const (
	WindowDaily   Window = "daily"
	WindowWeekly  Window = "weekly"
	WindowMonthly Window = "monthly"
)

// windowDays maps a window to its lookback in days. The window covers
// the inclusive range [reference-N, reference].
var windowDays = map[Window]int{
	WindowDaily:   0,
	WindowWeekly:  7,
	WindowMonthly: 30,
}

// ParseWindow validates a window name.
func ParseWindow(s string) (Window, error) {
	w := Window(s)
	if _, ok := windowDays[w]; !ok {
		return "", fmt.Errorf("unknown window %q", s)
	}
	return w, nil
}

// InWindow reports whether date falls inside the window ending at ref.
// Dates after the reference date are never included.
func InWindow(w Window, ref, date database.Date) bool {
	offset := ref.DaysSince(date)
	return offset >= 0 && offset <= windowDays[w]
}

// FilterRecords keeps the records whose date falls inside the window.
func FilterRecords(records []database.AttendanceRecord, w Window, ref database.Date) []database.AttendanceRecord {
	out := make([]database.AttendanceRecord, 0, len(records))
	for _, rec := range records {
		if InWindow(w, ref, rec.Date) {
			out = append(out, rec)
		}
	}
	return out
}

// FilterScores keeps the scores whose date falls inside the window.
func FilterScores(scores []database.EngagementScore, w Window, ref database.Date) []database.EngagementScore {
	out := make([]database.EngagementScore, 0, len(scores))
	for _, sc := range scores {
		if InWindow(w, ref, sc.Date) {
			out = append(out, sc)
		}
	}
	return out
}

// AttendanceRate computes the percentage of records counted as attended
// (Present or Late), rounded to the nearest integer. The second return
// is false when there are no records; a missing rate is "no data", never
// zero.
func AttendanceRate(records []database.AttendanceRecord) (int, bool) {
	if len(records) == 0 {
		return 0, false
	}
	attended := 0
	for _, rec := range records {
		if rec.Status == database.StatusPresent || rec.Status == database.StatusLate {
			attended++
		}
	}
	rate := math.Round(float64(attended) / float64(len(records)) * 100)
	return int(rate), true
}

// Shortage reports whether the attendance rate falls below the
// threshold. Zero records never flag a shortage.
func Shortage(records []database.AttendanceRecord, threshold int) bool {
	rate, ok := AttendanceRate(records)
	return ok && rate < threshold
}

// AverageEngagement computes the mean engagement score, rounded to the
// nearest integer. The second return is false when there are no scores.
func AverageEngagement(scores []database.EngagementScore) (int, bool) {
	if len(scores) == 0 {
		return 0, false
	}
	sum := 0
	for _, sc := range scores {
		sum += sc.Score
	}
	avg := math.Round(float64(sum) / float64(len(scores)))
	return int(avg), true
}
