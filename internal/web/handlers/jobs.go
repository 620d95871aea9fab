package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/kozaktomas/attendance-tracker/internal/database"
	"github.com/kozaktomas/attendance-tracker/internal/session"
)

// eventChannelBuffer is the per-listener event buffer size. A slow SSE
// client drops events instead of blocking the watch loop.
const eventChannelBuffer = 100

// JobStatus represents the status of an async job.
type JobStatus string

// JobStatus constants define the lifecycle states of an async job.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether the status is an end state; a terminal job
// emits no further events.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// WatchJob represents a live camera watch over one open session.
type WatchJob struct {
	EventBroadcaster

	ID          string
	Session     database.Session
	Status      JobStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string

	watcher *session.Watcher
}

// GetStatus returns the current job status.
func (j *WatchJob) GetStatus() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// setStatus transitions the job, recording completion time for terminal
// states.
func (j *WatchJob) setStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	if status.Terminal() {
		now := time.Now()
		j.CompletedAt = &now
	}
}

// WatchJobSnapshot is the serializable view of a watch job.
type WatchJobSnapshot struct {
	ID          string             `json:"id"`
	Session     database.Session   `json:"session"`
	Status      JobStatus          `json:"status"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	Error       string             `json:"error,omitempty"`
	Stats       session.WatchStats `json:"stats"`
}

// Snapshot returns a serializable view of the job with the watch
// counters filled in.
func (j *WatchJob) Snapshot() WatchJobSnapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()
	snapshot := WatchJobSnapshot{
		ID:          j.ID,
		Session:     j.Session,
		Status:      j.Status,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		Error:       j.Error,
	}
	if j.watcher != nil {
		snapshot.Stats = j.watcher.Stats()
	}
	return snapshot
}

// Cancel stops the watch loop. The frame in flight completes; no new
// frames are sampled.
func (j *WatchJob) Cancel() {
	if j.watcher != nil {
		j.watcher.Stop()
	}
	j.EventBroadcaster.Cancel()
	j.setStatus(JobStatusCancelled)
}

// JobEvent represents an event from a job.
type JobEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// EventBroadcaster provides listener management and event broadcasting for async jobs.
// Embed this in job structs to get AddListener, RemoveListener, and SendEvent methods.
type EventBroadcaster struct {
	cancel    context.CancelFunc
	listeners []chan JobEvent
	mu        sync.RWMutex
}

// AddListener adds an event listener.
func (b *EventBroadcaster) AddListener() chan JobEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan JobEvent, eventChannelBuffer)
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener.
func (b *EventBroadcaster) RemoveListener(ch chan JobEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// SendEvent sends an event to all listeners.
func (b *EventBroadcaster) SendEvent(event JobEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}

// Cancel cancels the job via context and sends a cancelled event.
func (b *EventBroadcaster) Cancel() {
	if b.cancel != nil {
		b.cancel()
	}
	b.SendEvent(JobEvent{Type: "cancelled", Message: "Watch cancelled by user"})
}

// JobManager manages async watch jobs.
type JobManager struct {
	jobs map[string]*WatchJob
	mu   sync.RWMutex
}

// NewJobManager creates a new job manager.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs: make(map[string]*WatchJob),
	}
}

// CreateJob registers a new watch job for the given session.
func (m *JobManager) CreateJob(id string, sess database.Session, watcher *session.Watcher) *WatchJob {
	job := &WatchJob{
		ID:        id,
		Session:   sess,
		Status:    JobStatusPending,
		StartedAt: time.Now(),
		watcher:   watcher,
	}

	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()

	return job
}

// GetJob retrieves a job by ID.
func (m *JobManager) GetJob(id string) *WatchJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// DeleteJob removes a job.
func (m *JobManager) DeleteJob(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
}

// ListJobs returns all jobs.
func (m *JobManager) ListJobs() []*WatchJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jobs := make([]*WatchJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}
