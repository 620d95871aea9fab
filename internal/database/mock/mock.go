// Package mock provides in-memory implementations of the database
// interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/attendance-tracker/internal/database"
)

// StudentStore is an in-memory implementation of database.StudentWriter.
type StudentStore struct {
	mu       sync.RWMutex
	students map[int64]*database.Student
	nextID   int64

	// Error injection
	GetError    error
	ListError   error
	CreateError error
	UpdateError error
}

// NewStudentStore creates an empty student store.
func NewStudentStore() *StudentStore {
	return &StudentStore{students: make(map[int64]*database.Student), nextID: 1}
}

// Add inserts a student directly, bypassing validation. Test setup helper.
func (s *StudentStore) Add(student database.Student) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if student.ID == 0 {
		student.ID = s.nextID
	}
	if student.ID >= s.nextID {
		s.nextID = student.ID + 1
	}
	s.students[student.ID] = &student
	return student.ID
}

// Get retrieves a student by id, returns nil if not found.
func (s *StudentStore) Get(ctx context.Context, id int64) (*database.Student, error) {
	if s.GetError != nil {
		return nil, s.GetError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.students[id]; ok {
		copied := *st
		return &copied, nil
	}
	return nil, nil
}

// ListByCohort retrieves all students matching the cohort exactly.
func (s *StudentStore) ListByCohort(ctx context.Context, cohort database.Cohort) ([]database.Student, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []database.Student
	for _, st := range s.students {
		if st.Year == cohort.Year && st.Term == cohort.Term {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListTemplates retrieves all students that have a biometric template.
func (s *StudentStore) ListTemplates(ctx context.Context) ([]database.Student, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []database.Student
	for _, st := range s.students {
		if len(st.Descriptor) > 0 {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Create enrolls a new student, rejecting duplicate roll numbers.
func (s *StudentStore) Create(ctx context.Context, student *database.Student) (int64, error) {
	if s.CreateError != nil {
		return 0, s.CreateError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.students {
		if existing.RollNo == student.RollNo {
			return 0, database.ErrDuplicate
		}
	}
	id := s.nextID
	s.nextID++
	copied := *student
	copied.ID = id
	copied.CreatedAt = time.Now()
	s.students[id] = &copied
	return id, nil
}

// UpdateProfile updates name and cohort.
func (s *StudentStore) UpdateProfile(ctx context.Context, id int64, name string, cohort database.Cohort) error {
	if s.UpdateError != nil {
		return s.UpdateError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[id]
	if !ok {
		return database.ErrNotFound
	}
	st.Name = name
	st.Year = cohort.Year
	st.Term = cohort.Term
	return nil
}

// ReplaceDescriptor overwrites the biometric template.
func (s *StudentStore) ReplaceDescriptor(ctx context.Context, id int64, descriptor []float32) error {
	if s.UpdateError != nil {
		return s.UpdateError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[id]
	if !ok {
		return database.ErrNotFound
	}
	st.Descriptor = append([]float32(nil), descriptor...)
	return nil
}

// Ledger is an in-memory implementation of database.AttendanceWriter and
// database.EngagementWriter. Both live in one struct because SetRating
// couples an attendance write with a score upsert.
type Ledger struct {
	mu       sync.Mutex
	students *StudentStore

	records     map[string]*database.AttendanceRecord // keyed by (student, date, session key)
	recordsByID map[int64]*database.AttendanceRecord
	scores      map[string]*database.EngagementScore // keyed by (student, date)
	nextID      int64

	// Error injection
	SeedError     error
	MarkError     error
	MarkErrorByID map[int64]error
	OverrideError error
	RatingError   error
	UpsertError   error
	ReadError     error
}

// NewLedger creates an empty ledger backed by the given student store.
func NewLedger(students *StudentStore) *Ledger {
	return &Ledger{
		students:    students,
		records:     make(map[string]*database.AttendanceRecord),
		recordsByID: make(map[int64]*database.AttendanceRecord),
		scores:      make(map[string]*database.EngagementScore),
		nextID:      1,
	}
}

func recordKey(studentID int64, date database.Date, sessionKey string) string {
	return fmt.Sprintf("%d|%s|%s", studentID, date, sessionKey)
}

func scoreKey(studentID int64, date database.Date) string {
	return fmt.Sprintf("%d|%s", studentID, date)
}

// SeedSession creates an Absent record per cohort student, skipping
// already-seeded key tuples.
func (l *Ledger) SeedSession(ctx context.Context, session database.Session) (int, error) {
	if l.SeedError != nil {
		return 0, l.SeedError
	}
	cohort, err := l.students.ListByCohort(ctx, session.Cohort)
	if err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	created := 0
	for _, st := range cohort {
		key := recordKey(st.ID, session.Date, session.Key)
		if _, exists := l.records[key]; exists {
			continue
		}
		rec := &database.AttendanceRecord{
			ID:         l.nextID,
			StudentID:  st.ID,
			Date:       session.Date,
			SessionKey: session.Key,
			Subject:    session.Subject,
			Year:       st.Year,
			Term:       st.Term,
			Slot:       session.Slot,
			Instructor: session.Instructor,
			Status:     database.StatusAbsent,
			Rating:     database.RatingNone,
			CreatedAt:  time.Now(),
		}
		l.nextID++
		l.records[key] = rec
		l.recordsByID[rec.ID] = rec
		created++
	}
	return created, nil
}

// MarkPresent sets an existing record to Present; missing records are a
// silent no-op.
func (l *Ledger) MarkPresent(ctx context.Context, studentID int64, date database.Date, sessionKey string) error {
	if l.MarkError != nil {
		return l.MarkError
	}
	if err := l.MarkErrorByID[studentID]; err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.records[recordKey(studentID, date, sessionKey)]; ok {
		rec.Status = database.StatusPresent
	}
	return nil
}

// OverrideStatus sets any status on a record by id.
func (l *Ledger) OverrideStatus(ctx context.Context, recordID int64, status database.Status) error {
	if l.OverrideError != nil {
		return l.OverrideError
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.recordsByID[recordID]
	if !ok {
		return database.ErrNotFound
	}
	rec.Status = status
	return nil
}

// SetRating writes the rating label and upserts the score atomically.
func (l *Ledger) SetRating(ctx context.Context, recordID int64, rating database.Rating, score int) error {
	if l.RatingError != nil {
		return l.RatingError
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.recordsByID[recordID]
	if !ok {
		return database.ErrNotFound
	}
	rec.Rating = rating
	l.upsertLocked(rec.StudentID, rec.Date, score)
	return nil
}

// Upsert inserts or replaces the score for (student, date).
func (l *Ledger) Upsert(ctx context.Context, studentID int64, date database.Date, score int) error {
	if l.UpsertError != nil {
		return l.UpsertError
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.upsertLocked(studentID, date, score)
	return nil
}

func (l *Ledger) upsertLocked(studentID int64, date database.Date, score int) {
	key := scoreKey(studentID, date)
	if existing, ok := l.scores[key]; ok {
		existing.Score = score
		existing.UpdatedAt = time.Now()
		return
	}
	l.scores[key] = &database.EngagementScore{
		ID:        l.nextID,
		StudentID: studentID,
		Date:      date,
		Score:     score,
		UpdatedAt: time.Now(),
	}
	l.nextID++
}

// Get retrieves a record by id, returns nil if not found.
func (l *Ledger) Get(ctx context.Context, id int64) (*database.AttendanceRecord, error) {
	if l.ReadError != nil {
		return nil, l.ReadError
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.recordsByID[id]; ok {
		copied := *rec
		return &copied, nil
	}
	return nil, nil
}

// HistoryByStudent retrieves a student's records, newest first.
func (l *Ledger) HistoryByStudent(ctx context.Context, studentID int64) ([]database.AttendanceRecord, error) {
	if l.ReadError != nil {
		return nil, l.ReadError
	}
	all, err := l.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []database.AttendanceRecord
	for _, rec := range all {
		if rec.StudentID == studentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ListAll retrieves every record, newest first.
func (l *Ledger) ListAll(ctx context.Context) ([]database.AttendanceRecord, error) {
	if l.ReadError != nil {
		return nil, l.ReadError
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]database.AttendanceRecord, 0, len(l.recordsByID))
	for _, rec := range l.recordsByID {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[j].Date.DaysSince(out[i].Date) < 0
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// ExportRows retrieves the export projection joined with student identity.
func (l *Ledger) ExportRows(ctx context.Context) ([]database.ExportRow, error) {
	records, err := l.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []database.ExportRow
	for _, rec := range records {
		student, err := l.students.Get(ctx, rec.StudentID)
		if err != nil {
			return nil, err
		}
		row := database.ExportRow{
			Date:       rec.Date,
			Status:     rec.Status,
			Subject:    rec.Subject,
			Year:       rec.Year,
			Term:       rec.Term,
			Slot:       rec.Slot,
			Instructor: rec.Instructor,
		}
		if student != nil {
			row.Name = student.Name
			row.RollNo = student.RollNo
		}
		out = append(out, row)
	}
	return out, nil
}

// GetScore retrieves the score for (student, date), returns nil if none.
func (l *Ledger) GetScore(ctx context.Context, studentID int64, date database.Date) (*database.EngagementScore, error) {
	if l.ReadError != nil {
		return nil, l.ReadError
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if sc, ok := l.scores[scoreKey(studentID, date)]; ok {
		copied := *sc
		return &copied, nil
	}
	return nil, nil
}

// ListScoresByStudent retrieves all scores for a student.
func (l *Ledger) ListScoresByStudent(ctx context.Context, studentID int64) ([]database.EngagementScore, error) {
	all, err := l.ListAllScores(ctx)
	if err != nil {
		return nil, err
	}
	var out []database.EngagementScore
	for _, sc := range all {
		if sc.StudentID == studentID {
			out = append(out, sc)
		}
	}
	return out, nil
}

// ListAllScores retrieves every score.
func (l *Ledger) ListAllScores(ctx context.Context) ([]database.EngagementScore, error) {
	if l.ReadError != nil {
		return nil, l.ReadError
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]database.EngagementScore, 0, len(l.scores))
	for _, sc := range l.scores {
		out = append(out, *sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// EngagementView adapts the Ledger to database.EngagementWriter. A
// separate view type is needed because the attendance and engagement
// interfaces both name their lookup method Get.
type EngagementView struct {
	*Ledger
}

// Engagement returns the ledger's engagement-score view.
func (l *Ledger) Engagement() EngagementView {
	return EngagementView{l}
}

// Get retrieves the score for (student, date), returns nil if none exists.
func (v EngagementView) Get(ctx context.Context, studentID int64, date database.Date) (*database.EngagementScore, error) {
	return v.GetScore(ctx, studentID, date)
}

// ListByStudent retrieves all scores for a student.
func (v EngagementView) ListByStudent(ctx context.Context, studentID int64) ([]database.EngagementScore, error) {
	return v.ListScoresByStudent(ctx, studentID)
}

// ListAll retrieves every score.
func (v EngagementView) ListAll(ctx context.Context) ([]database.EngagementScore, error) {
	return v.ListAllScores(ctx)
}

// QueryStore is an in-memory implementation of database.QueryStore.
type QueryStore struct {
	mu      sync.Mutex
	queries map[int64]*database.StudentQuery
	nextID  int64

	// Error injection
	CreateError error
	ListError   error
	UpdateError error
}

// NewQueryStore creates an empty query store.
func NewQueryStore() *QueryStore {
	return &QueryStore{queries: make(map[int64]*database.StudentQuery), nextID: 1}
}

// Create stores a new query with Pending status.
func (q *QueryStore) Create(ctx context.Context, query *database.StudentQuery) (int64, error) {
	if q.CreateError != nil {
		return 0, q.CreateError
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	id := q.nextID
	q.nextID++
	copied := *query
	copied.ID = id
	copied.Status = database.QueryPending
	copied.CreatedAt = time.Now()
	q.queries[id] = &copied
	return id, nil
}

// ListByStudent retrieves a student's queries, newest first.
func (q *QueryStore) ListByStudent(ctx context.Context, studentID int64) ([]database.StudentQuery, error) {
	all, err := q.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []database.StudentQuery
	for _, query := range all {
		if query.StudentID == studentID {
			out = append(out, query)
		}
	}
	return out, nil
}

// ListAll retrieves every query, newest first.
func (q *QueryStore) ListAll(ctx context.Context) ([]database.StudentQuery, error) {
	if q.ListError != nil {
		return nil, q.ListError
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]database.StudentQuery, 0, len(q.queries))
	for _, query := range q.queries {
		out = append(out, *query)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// UpdateStatus moves a query through its lifecycle.
func (q *QueryStore) UpdateStatus(ctx context.Context, queryID int64, status database.QueryStatus) error {
	if q.UpdateError != nil {
		return q.UpdateError
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	query, ok := q.queries[queryID]
	if !ok {
		return database.ErrNotFound
	}
	query.Status = status
	return nil
}
