package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "attendance-tracker",
	Short: "A classroom attendance tracker driven by face recognition",
	Long: `Attendance Tracker seeds attendance sessions for enrolled cohorts,
reconciles face recognition events into an attendance ledger, scores
student engagement from facial expressions, and serves the aggregated
statistics over a JSON API.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
