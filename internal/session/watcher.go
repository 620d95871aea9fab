package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kozaktomas/attendance-tracker/internal/database"
	"github.com/kozaktomas/attendance-tracker/internal/detector"
	"github.com/kozaktomas/attendance-tracker/internal/recognition"
)

// FrameSource produces JPEG frames, one per call.
type FrameSource interface {
	Frame(ctx context.Context) ([]byte, error)
}

// Detector finds faces in a JPEG frame.
type Detector interface {
	Detect(ctx context.Context, frame []byte) ([]detector.Detection, error)
}

// WatchEvent is emitted after each processed frame.
type WatchEvent struct {
	Time     time.Time `json:"time"`
	Faces    int       `json:"faces"`
	Matched  int       `json:"matched"`
	Unknown  int       `json:"unknown"`
	Error    string    `json:"error,omitempty"`
	Finished bool      `json:"finished"`
}

// WatchStats accumulates counters over the lifetime of a watch.
type WatchStats struct {
	Frames  uint64 `json:"frames"`
	Faces   uint64 `json:"faces"`
	Matched uint64 `json:"matched"`
	Unknown uint64 `json:"unknown"`
	Errors  uint64 `json:"errors"`
}

// Watcher samples frames from a camera on a fixed interval, resolves the
// detected faces against enrolled templates, and reconciles each match
// into the attendance ledger. One watcher serves one open session.
type Watcher struct {
	source     FrameSource
	detect     Detector
	resolver   *recognition.Resolver
	reconciler *Reconciler
	session    database.Session
	interval   time.Duration
	onEvent    func(WatchEvent)

	frames  atomic.Uint64
	faces   atomic.Uint64
	matched atomic.Uint64
	unknown atomic.Uint64
	errors  atomic.Uint64

	writes   sync.WaitGroup
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewWatcher creates a watcher for the given session. onEvent may be nil;
// when set it is called after every frame (and once more on shutdown with
// Finished set) from the watcher's goroutine.
func NewWatcher(
	source FrameSource,
	detect Detector,
	resolver *recognition.Resolver,
	reconciler *Reconciler,
	session database.Session,
	interval time.Duration,
	onEvent func(WatchEvent),
) *Watcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Watcher{
		source:     source,
		detect:     detect,
		resolver:   resolver,
		reconciler: reconciler,
		session:    session,
		interval:   interval,
		onEvent:    onEvent,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run samples frames until Stop is called or the context is cancelled.
// Per-face writes in flight when shutdown begins complete before Wait
// returns.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.done)
	defer w.writes.Wait()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.emit(WatchEvent{Time: time.Now(), Finished: true})
			return
		case <-w.stop:
			w.emit(WatchEvent{Time: time.Now(), Finished: true})
			return
		case <-ticker.C:
			w.processFrame(ctx)
		}
	}
}

// Stop asks the watcher to finish. It does not wait; use Wait for that.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// Wait blocks until the watcher's Run loop has returned.
func (w *Watcher) Wait() {
	<-w.done
}

// Stats returns a snapshot of the watch counters.
func (w *Watcher) Stats() WatchStats {
	return WatchStats{
		Frames:  w.frames.Load(),
		Faces:   w.faces.Load(),
		Matched: w.matched.Load(),
		Unknown: w.unknown.Load(),
		Errors:  w.errors.Load(),
	}
}

func (w *Watcher) processFrame(ctx context.Context) {
	w.frames.Add(1)
	event := WatchEvent{Time: time.Now()}

	frame, err := w.source.Frame(ctx)
	if err != nil {
		w.errors.Add(1)
		event.Error = fmt.Sprintf("fetch frame: %v", err)
		w.emit(event)
		return
	}

	faces, err := w.detect.Detect(ctx, frame)
	if err != nil {
		w.errors.Add(1)
		event.Error = fmt.Sprintf("detect faces: %v", err)
		w.emit(event)
		return
	}

	event.Faces = len(faces)
	w.faces.Add(uint64(len(faces)))

	// Resolution is an in-memory lookup and happens inline. The storage
	// writes for each matched face run independently of the tick; writes
	// in flight when the watch stops are allowed to complete.
	writeCtx := context.WithoutCancel(ctx)
	for _, face := range faces {
		studentID, ok := w.resolver.Resolve(face.Descriptor)
		if !ok {
			event.Unknown++
			w.unknown.Add(1)
			continue
		}
		event.Matched++
		w.matched.Add(1)

		score := recognition.Score(face.Expressions)
		w.writes.Add(1)
		go func() {
			defer w.writes.Done()
			w.reconcile(writeCtx, studentID, score)
		}()
	}

	w.emit(event)
}

func (w *Watcher) reconcile(ctx context.Context, studentID int64, score int) {
	if err := w.reconciler.MarkPresent(ctx, studentID, w.session.Date, w.session.Key); err != nil {
		w.errors.Add(1)
		return
	}
	if err := w.reconciler.RecordObservation(ctx, studentID, w.session.Date, score); err != nil {
		w.errors.Add(1)
	}
}

func (w *Watcher) emit(event WatchEvent) {
	if w.onEvent != nil {
		w.onEvent(event)
	}
}
