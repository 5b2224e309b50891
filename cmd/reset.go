package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhanush/skillpath/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset <learner-id>",
	Short: "Delete a learner's roadmap, units, content and attempts",
	Long: "Removes every curriculum row for the learner: nodes, units, generated content,\n" +
		"quiz attempts and the current-topic record. The learner profile itself is kept.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		learnerID, err := parseID(args[0], "learner")
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to delete learner %d's data without --yes", learnerID)
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

		if _, err := s.Learners().ByID(cmd.Context(), learnerID); err != nil {
			return err
		}
		if err := s.ResetLearner(cmd.Context(), learnerID); err != nil {
			return err
		}

		fmt.Printf("Learner %d reset. Generate a new roadmap with: skillpath roadmap new %d\n", learnerID, learnerID)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the deletion")
}
