package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhanush/skillpath/internal/progress"
	"github.com/dhanush/skillpath/internal/store"
)

var progressCmd = &cobra.Command{
	Use:   "progress <learner-id>",
	Short: "Show a learner's completion progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		learnerID, err := parseID(args[0], "learner")
		if err != nil {
			return err
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		report, err := progress.NewTracker(s).Progress(cmd.Context(), learnerID)
		if err != nil {
			return err
		}

		if report.Topic != "" {
			fmt.Printf("Topic: %s\n", report.Topic)
		}
		if report.Total == 0 {
			fmt.Println("No units yet. Generate a roadmap and request the first unit.")
			return nil
		}

		filled := report.Percent * 30 / 100
		bar := strings.Repeat("█", filled) + strings.Repeat("░", 30-filled)
		fmt.Printf("[%s] %d%%  (%d of %d units done)\n", bar, report.Percent, report.Done, report.Total)
		return nil
	},
}
