package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/kozaktomas/attendance-tracker/internal/config"
	"github.com/kozaktomas/attendance-tracker/internal/database/postgres"
	"github.com/kozaktomas/attendance-tracker/internal/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the attendance ledger as CSV",
	Long: `Export every attendance record as CSV, one row per record with the
student, session metadata, and final status. Writes to stdout unless
--output is given.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("output", "", "Output file path (defaults to stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()
	attendance := postgres.NewAttendanceRepository(pool)

	out := os.Stdout
	path := mustGetString(cmd, "output")
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("could not create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	rows, err := export.WriteCSV(cmd.Context(), attendance, out)
	if err != nil {
		return fmt.Errorf("could not export attendance: %w", err)
	}

	if path != "" {
		fmt.Printf("Exported %d attendance records to %s\n", rows, path)
	}
	return nil
}
