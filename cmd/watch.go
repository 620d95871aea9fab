package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kozaktomas/attendance-tracker/internal/config"
	"github.com/kozaktomas/attendance-tracker/internal/database"
	"github.com/kozaktomas/attendance-tracker/internal/database/postgres"
	"github.com/kozaktomas/attendance-tracker/internal/detector"
	"github.com/kozaktomas/attendance-tracker/internal/recognition"
	"github.com/kozaktomas/attendance-tracker/internal/session"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a classroom camera and reconcile attendance",
	Long: `Sample frames from a classroom camera, match detected faces against
enrolled students, and mark matched students present in the given session.
Each match also records an engagement score derived from facial expressions.
Runs until interrupted with Ctrl+C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("date", "", "Session date, YYYY-MM-DD (defaults to today)")
	watchCmd.Flags().String("key", "", "Session key of an open session (required)")
	watchCmd.Flags().String("camera-url", "", "Camera snapshot URL (defaults to CAMERA_URL)")
	watchCmd.Flags().Bool("quiet", false, "Suppress per-frame output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	if cfg.Detector.URL == "" {
		return errors.New("DETECTOR_URL environment variable is required")
	}

	key := mustGetString(cmd, "key")
	if key == "" {
		return errors.New("--key is required")
	}

	date := database.Today()
	if raw := mustGetString(cmd, "date"); raw != "" {
		parsed, err := database.ParseDate(raw)
		if err != nil {
			return err
		}
		date = parsed
	}

	cameraURL := mustGetString(cmd, "camera-url")
	if cameraURL == "" {
		cameraURL = cfg.Recognition.CameraURL
	}
	if cameraURL == "" {
		return errors.New("no camera: pass --camera-url or set CAMERA_URL")
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	students := postgres.NewStudentRepository(pool)
	reconciler := session.NewReconciler(
		postgres.NewAttendanceRepository(pool),
		postgres.NewEngagementRepository(pool),
		&cfg.Scoring,
	)

	resolver := recognition.NewResolver(cfg.Scoring.MatchThreshold)
	templates, err := students.ListTemplates(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not load face templates: %w", err)
	}
	resolver.SetTemplates(templates)
	if resolver.Size() == 0 {
		return errors.New("no students have enrolled face templates")
	}
	fmt.Printf("Face matcher ready with %d enrolled templates\n", resolver.Size())

	client, err := detector.NewClient(&cfg.Detector)
	if err != nil {
		return fmt.Errorf("could not create detector client: %w", err)
	}
	source, err := detector.NewSnapshotSource(cameraURL)
	if err != nil {
		return fmt.Errorf("could not create camera source: %w", err)
	}

	quiet := mustGetBool(cmd, "quiet")
	onEvent := func(event session.WatchEvent) {
		if quiet || event.Finished {
			return
		}
		if event.Error != "" {
			fmt.Printf("%s  frame error: %s\n", event.Time.Format("15:04:05"), event.Error)
			return
		}
		fmt.Printf("%s  faces=%d matched=%d unknown=%d\n",
			event.Time.Format("15:04:05"), event.Faces, event.Matched, event.Unknown)
	}

	sess := database.Session{Date: date, Key: key}
	watcher := session.NewWatcher(source, client, resolver, reconciler, sess,
		cfg.Recognition.SampleInterval, onEvent)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nStopping watch...")
		watcher.Stop()
	}()

	fmt.Printf("Watching %s for session %s on %s (every %s)\n",
		cameraURL, key, date, cfg.Recognition.SampleInterval)
	fmt.Println("Press Ctrl+C to stop")

	watcher.Run(ctx)

	stats := watcher.Stats()
	fmt.Printf("\nProcessed %d frames: %d faces, %d matched, %d unknown, %d errors\n",
		stats.Frames, stats.Faces, stats.Matched, stats.Unknown, stats.Errors)
	return nil
}
