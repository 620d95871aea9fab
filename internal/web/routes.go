package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/attendance-tracker/internal/session"
	"github.com/kozaktomas/attendance-tracker/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	manager := session.NewManager(s.stores.Students, s.stores.Attendance)
	reconciler := session.NewReconciler(s.stores.Attendance, s.stores.Engagement, &s.config.Scoring)

	// Create handlers
	studentsHandler := handlers.NewStudentsHandler(s.stores.Students, s.resolver, s.config.Detector.Dim)
	sessionsHandler := handlers.NewSessionsHandler(manager, reconciler, s.resolver, s.detector)
	attendanceHandler := handlers.NewAttendanceHandler(s.stores.Attendance, reconciler)
	engagementHandler := handlers.NewEngagementHandler(s.stores.Engagement, reconciler)
	statsHandler := handlers.NewStatsHandler(s.statsService())
	exportHandler := handlers.NewExportHandler(s.stores.Attendance)
	queriesHandler := handlers.NewQueriesHandler(s.stores.Queries)
	watchHandler := handlers.NewWatchHandler(s.jobManager, reconciler, s.resolver, s.detector, s.source, s.config.Recognition.SampleInterval)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Students
		r.Get("/students", studentsHandler.List)
		r.Post("/students", studentsHandler.Create)
		r.Get("/students/{id}", studentsHandler.Get)
		r.Put("/students/{id}", studentsHandler.Update)
		r.Put("/students/{id}/descriptor", studentsHandler.EnrollFace)
		r.Get("/students/{id}/attendance", attendanceHandler.StudentHistory)
		r.Get("/students/{id}/engagement", engagementHandler.StudentScores)
		r.Get("/students/{id}/stats", statsHandler.StudentSummary)
		r.Get("/students/{id}/queries", queriesHandler.StudentQueries)

		// Sessions
		r.Post("/sessions/open", sessionsHandler.Open)
		r.Post("/sessions/frame", sessionsHandler.IngestFrame)

		// Attendance ledger
		r.Get("/attendance", attendanceHandler.List)
		r.Post("/attendance/mark", attendanceHandler.MarkPresent)
		r.Put("/attendance/{id}/status", attendanceHandler.OverrideStatus)
		r.Put("/attendance/{id}/rating", attendanceHandler.SetRating)

		// Engagement
		r.Get("/engagement", engagementHandler.List)
		r.Post("/engagement", engagementHandler.RecordObservation)

		// Stats
		r.Get("/stats/cohort", statsHandler.CohortSummary)

		// Export
		r.Get("/export/attendance.csv", exportHandler.CSV)

		// Student queries
		r.Get("/queries", queriesHandler.List)
		r.Post("/queries", queriesHandler.Create)
		r.Put("/queries/{id}/status", queriesHandler.UpdateStatus)

		// Watch (long-running recognition loops)
		r.Get("/watch", watchHandler.List)
		r.Post("/watch", watchHandler.Start)
		r.Get("/watch/{jobId}", watchHandler.Status)
		r.Get("/watch/{jobId}/events", watchHandler.Events)
		r.Delete("/watch/{jobId}", watchHandler.Cancel)
	})
}
