package cmd

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/attendance-tracker/internal/config"
	"github.com/kozaktomas/attendance-tracker/internal/database"
	"github.com/kozaktomas/attendance-tracker/internal/database/mariadb"
	"github.com/kozaktomas/attendance-tracker/internal/database/postgres"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the student roster from the school MIS",
	Long: `Import the student roster from the legacy school information system
(MariaDB) into the tracker. Students already present (same roll number)
are skipped, so the import can be re-run safely after enrollment changes.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Bool("dry-run", false, "List what would be imported without writing")
}

// dedupeRoster drops MIS rows that collapse to the same student. The MIS
// keeps one row per enrollment, so transfers show up twice with slightly
// different name spellings.
func dedupeRoster(roster []mariadb.RosterStudent) []mariadb.RosterStudent {
	seen := make(map[string]bool, len(roster))
	out := make([]mariadb.RosterStudent, 0, len(roster))
	for _, r := range roster {
		key := r.RollNo + "|" + mariadb.NormalizeName(r.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	if cfg.MIS.DatabaseURL == "" {
		return errors.New("MIS_DATABASE_URL environment variable is required")
	}

	fmt.Printf("Connecting to MIS database...\n")
	mis, err := mariadb.NewPool(cfg.MIS.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to MIS: %w", err)
	}
	defer mis.Close()

	roster, err := mis.ListRoster(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not read MIS roster: %w", err)
	}
	before := len(roster)
	roster = dedupeRoster(roster)
	fmt.Printf("MIS roster: %d students (%d duplicate rows dropped)\n", len(roster), before-len(roster))

	if mustGetBool(cmd, "dry-run") {
		for _, r := range roster {
			fmt.Printf("  %-10s %-30s %s/%s\n", r.RollNo, r.Name, r.Year, r.Term)
		}
		return nil
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()
	students := postgres.NewStudentRepository(pool)

	bar := progressbar.NewOptions(len(roster),
		progressbar.OptionSetDescription("Importing students"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("students"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var created, skipped, failed int
	for _, r := range roster {
		student := database.Student{
			Name:   r.Name,
			RollNo: r.RollNo,
			Year:   r.Year,
			Term:   r.Term,
		}
		_, err := students.Create(cmd.Context(), &student)
		switch {
		case errors.Is(err, database.ErrDuplicate):
			skipped++
		case err != nil:
			failed++
			fmt.Printf("\nfailed to import %s (%s): %v\n", r.Name, r.RollNo, err)
		default:
			created++
		}
		bar.Add(1)
	}

	fmt.Printf("\nImport complete: %d created, %d already present, %d failed\n", created, skipped, failed)
	if failed > 0 {
		return fmt.Errorf("%d students failed to import", failed)
	}
	return nil
}
