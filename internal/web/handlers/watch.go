package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kozaktomas/attendance-tracker/internal/database"
	"github.com/kozaktomas/attendance-tracker/internal/detector"
	"github.com/kozaktomas/attendance-tracker/internal/recognition"
	"github.com/kozaktomas/attendance-tracker/internal/session"
)

// WatchHandler handles live camera watch jobs. A watch job runs the
// recognition loop server-side for one open session and streams its
// progress over SSE.
type WatchHandler struct {
	jobs       *JobManager
	reconciler *session.Reconciler
	resolver   *recognition.Resolver
	detect     session.Detector
	source     session.FrameSource
	interval   time.Duration
}

// NewWatchHandler creates a watch handler. source is the default camera;
// a request may name its own snapshot URL instead.
func NewWatchHandler(jobs *JobManager, reconciler *session.Reconciler, resolver *recognition.Resolver, detect session.Detector, source session.FrameSource, interval time.Duration) *WatchHandler {
	return &WatchHandler{
		jobs:       jobs,
		reconciler: reconciler,
		resolver:   resolver,
		detect:     detect,
		source:     source,
		interval:   interval,
	}
}

type startWatchRequest struct {
	Date       string `json:"date"`
	SessionKey string `json:"session_key"`
	CameraURL  string `json:"camera_url,omitempty"`
}

// Start handles POST /watch. Starts a recognition loop for the session;
// the session should already be open so sightings land on seeded rows.
func (h *WatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	if h.detect == nil || h.resolver == nil {
		respondError(w, http.StatusServiceUnavailable, "recognition pipeline is not configured")
		return
	}

	var req startWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.SessionKey == "" {
		respondError(w, http.StatusBadRequest, "session_key is required")
		return
	}
	date, err := database.ParseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	source := h.source
	if req.CameraURL != "" {
		source, err = detector.NewSnapshotSource(req.CameraURL)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid camera URL")
			return
		}
	}
	if source == nil {
		respondError(w, http.StatusServiceUnavailable, "no camera configured")
		return
	}

	sess := database.Session{Date: date, Key: req.SessionKey}
	jobID := uuid.New().String()

	var job *WatchJob
	watcher := session.NewWatcher(source, h.detect, h.resolver, h.reconciler, sess, h.interval, func(ev session.WatchEvent) {
		if ev.Finished {
			job.SendEvent(JobEvent{Type: "finished", Data: job.Snapshot()})
			return
		}
		job.SendEvent(JobEvent{Type: "frame", Data: ev})
	})
	job = h.jobs.CreateJob(jobID, sess, watcher)

	ctx, cancel := context.WithCancel(context.Background())
	job.cancel = cancel
	job.setStatus(JobStatusRunning)

	go func() {
		watcher.Run(ctx)
		if job.GetStatus() == JobStatusRunning {
			job.setStatus(JobStatusCompleted)
		}
	}()

	log.Printf("Started watch job %s for session %s", jobID, sanitizeForLog(req.SessionKey))
	respondJSON(w, http.StatusAccepted, job.Snapshot())
}

// Status handles GET /watch/{jobId}
func (h *WatchHandler) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	job := h.jobs.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	respondJSON(w, http.StatusOK, job.Snapshot())
}

// List handles GET /watch
func (h *WatchHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs := h.jobs.ListJobs()
	snapshots := make([]WatchJobSnapshot, 0, len(jobs))
	for _, job := range jobs {
		snapshots = append(snapshots, job.Snapshot())
	}
	respondJSON(w, http.StatusOK, map[string]any{"jobs": snapshots})
}

// Events handles GET /watch/{jobId}/events. Streams the job's frame and
// lifecycle events as SSE until the watch reaches a terminal state or
// the client disconnects. The first event is always a snapshot of the
// job, so late subscribers see the current counters immediately.
func (h *WatchHandler) Events(w http.ResponseWriter, r *http.Request) {
	job := h.jobs.GetJob(chi.URLParam(r, "jobId"))
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eventCh := job.AddListener()
	defer job.RemoveListener(eventCh)

	sendSSEEvent(w, flusher, "status", job.Snapshot())

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-eventCh:
			if !open {
				return
			}
			sendSSEEvent(w, flusher, event.Type, event)
			if job.GetStatus().Terminal() {
				return
			}
		}
	}
}

// Cancel handles DELETE /watch/{jobId}. Stops the loop; the frame in
// flight completes and its writes are kept.
func (h *WatchHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	job := h.jobs.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}

	job.Cancel()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// sendSSEEvent writes one SSE event and flushes it to the client.
func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) {
	jsonData, _ := json.Marshal(data)
	_, _ = io.WriteString(w, "event: "+eventType+"\n")
	_, _ = io.WriteString(w, "data: ")
	_, _ = io.Copy(w, bytes.NewReader(jsonData))
	_, _ = io.WriteString(w, "\n\n")
	flusher.Flush()
}
