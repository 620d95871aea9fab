// Package web wires the HTTP API of the attendance tracker.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/attendance-tracker/internal/config"
	"github.com/kozaktomas/attendance-tracker/internal/database"
	"github.com/kozaktomas/attendance-tracker/internal/recognition"
	"github.com/kozaktomas/attendance-tracker/internal/session"
	"github.com/kozaktomas/attendance-tracker/internal/stats"
	"github.com/kozaktomas/attendance-tracker/internal/web/handlers"
	"github.com/kozaktomas/attendance-tracker/internal/web/middleware"
)

// Stores bundles the storage interfaces the server depends on.
type Stores struct {
	Students   database.StudentWriter
	Attendance database.AttendanceWriter
	Engagement database.EngagementWriter
	Queries    database.QueryStore
}

// Server represents the web server.
type Server struct {
	config     *config.Config
	stores     Stores
	router     *chi.Mux
	httpServer *http.Server
	jobManager *handlers.JobManager
	resolver   *recognition.Resolver
	detector   session.Detector
	source     session.FrameSource
}

// NewServer creates a new web server. detector and source may be nil;
// recognition endpoints then respond 503 while the rest of the API keeps
// working.
func NewServer(cfg *config.Config, port int, host string, stores Stores, resolver *recognition.Resolver, detector session.Detector, source session.FrameSource) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:     cfg,
		stores:     stores,
		router:     r,
		jobManager: handlers.NewJobManager(),
		resolver:   resolver,
		detector:   detector,
		source:     source,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(time.Minute))
	r.Use(middleware.CORS())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Long timeout for SSE and frame uploads
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server. Running watch jobs are
// cancelled; their in-flight frames complete.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	for _, job := range s.jobManager.ListJobs() {
		job.Cancel()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// statsService builds the read-side aggregation service.
func (s *Server) statsService() *stats.Service {
	return stats.NewService(s.stores.Attendance, s.stores.Engagement, s.config.Scoring.ShortageThreshold)
}
