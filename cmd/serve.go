package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/attendance-tracker/internal/config"
	"github.com/kozaktomas/attendance-tracker/internal/database/postgres"
	"github.com/kozaktomas/attendance-tracker/internal/detector"
	"github.com/kozaktomas/attendance-tracker/internal/recognition"
	"github.com/kozaktomas/attendance-tracker/internal/session"
	"github.com/kozaktomas/attendance-tracker/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Attendance Tracker web server.
The server exposes the JSON API for managing students, opening sessions,
ingesting camera frames, and querying attendance statistics.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// buildRecognitionPipeline wires the face matcher, the detection sidecar
// client, and the camera source. The detector and camera are optional;
// without them the server still runs with manual attendance only.
func buildRecognitionPipeline(
	ctx context.Context, cfg *config.Config, students *postgres.StudentRepository,
) (*recognition.Resolver, session.Detector, session.FrameSource, error) {
	resolver := recognition.NewResolver(cfg.Scoring.MatchThreshold)

	templates, err := students.ListTemplates(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not load face templates: %w", err)
	}
	resolver.SetTemplates(templates)
	fmt.Printf("Face matcher ready with %d enrolled templates\n", resolver.Size())

	var detect session.Detector
	if cfg.Detector.URL != "" {
		client, err := detector.NewClient(&cfg.Detector)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("could not create detector client: %w", err)
		}
		detect = client
		fmt.Printf("Face detection sidecar: %s\n", cfg.Detector.URL)
	} else {
		fmt.Println("DETECTOR_URL not set, frame ingestion disabled")
	}

	var source session.FrameSource
	if cfg.Recognition.CameraURL != "" {
		src, err := detector.NewSnapshotSource(cfg.Recognition.CameraURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("could not create camera source: %w", err)
		}
		source = src
		fmt.Printf("Camera snapshot source: %s\n", cfg.Recognition.CameraURL)
	} else {
		fmt.Println("CAMERA_URL not set, watch jobs require an explicit camera_url")
	}

	return resolver, detect, source, nil
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	students := postgres.NewStudentRepository(pool)
	stores := web.Stores{
		Students:   students,
		Attendance: postgres.NewAttendanceRepository(pool),
		Engagement: postgres.NewEngagementRepository(pool),
		Queries:    postgres.NewQueryRepository(pool),
	}

	resolver, detect, source, err := buildRecognitionPipeline(cmd.Context(), cfg, students)
	if err != nil {
		return err
	}

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, stores, resolver, detect, source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Attendance Tracker on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
