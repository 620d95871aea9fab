package cmd

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/attendance-tracker/internal/config"
	"github.com/kozaktomas/attendance-tracker/internal/database"
	"github.com/kozaktomas/attendance-tracker/internal/database/postgres"
	"github.com/kozaktomas/attendance-tracker/internal/session"
	"github.com/spf13/cobra"
)

var sessionOpenCmd = &cobra.Command{
	Use:   "session-open",
	Short: "Open an attendance session for a cohort",
	Long: `Open an attendance session: seed an Absent record for every enrolled
student of the cohort under the given date and session key. Reopening an
existing session only backfills students enrolled since the last open,
existing records are never touched.`,
	RunE: runSessionOpen,
}

func init() {
	rootCmd.AddCommand(sessionOpenCmd)

	sessionOpenCmd.Flags().String("date", "", "Session date, YYYY-MM-DD (defaults to today)")
	sessionOpenCmd.Flags().String("key", "", "Session key, unique per class meeting (required)")
	sessionOpenCmd.Flags().String("subject", "", "Subject taught in the session")
	sessionOpenCmd.Flags().String("year", "", "Cohort year (required)")
	sessionOpenCmd.Flags().String("term", "", "Cohort term (required)")
	sessionOpenCmd.Flags().String("slot", "", "Timetable slot label")
	sessionOpenCmd.Flags().String("instructor", "", "Instructor name")
}

// sessionFromFlags builds the session descriptor from command line flags.
func sessionFromFlags(cmd *cobra.Command) (database.Session, error) {
	date := database.Today()
	if raw := mustGetString(cmd, "date"); raw != "" {
		parsed, err := database.ParseDate(raw)
		if err != nil {
			return database.Session{}, err
		}
		date = parsed
	}

	sess := database.Session{
		Date:    date,
		Key:     mustGetString(cmd, "key"),
		Subject: mustGetString(cmd, "subject"),
		Cohort: database.Cohort{
			Year: mustGetString(cmd, "year"),
			Term: mustGetString(cmd, "term"),
		},
		Slot:       mustGetString(cmd, "slot"),
		Instructor: mustGetString(cmd, "instructor"),
	}
	if sess.Key == "" {
		return database.Session{}, errors.New("--key is required")
	}
	if sess.Cohort.Empty() {
		return database.Session{}, errors.New("--year and --term are required")
	}
	return sess, nil
}

func runSessionOpen(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	sess, err := sessionFromFlags(cmd)
	if err != nil {
		return err
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	manager := session.NewManager(
		postgres.NewStudentRepository(pool),
		postgres.NewAttendanceRepository(pool),
	)

	result, err := manager.Open(cmd.Context(), sess)
	if err != nil {
		return fmt.Errorf("could not open session: %w", err)
	}

	fmt.Printf("Session %s on %s (%s %s/%s)\n",
		sess.Key, sess.Date, sess.Subject, sess.Cohort.Year, sess.Cohort.Term)
	fmt.Printf("  Cohort size:     %d\n", result.CohortSize)
	fmt.Printf("  Records created: %d\n", result.Created)
	if result.Created == 0 && result.CohortSize > 0 {
		fmt.Println("  Session was already open, nothing to seed")
	}
	return nil
}
