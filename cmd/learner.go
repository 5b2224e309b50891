package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhanush/skillpath/internal/store"
)

var learnerCmd = &cobra.Command{
	Use:   "learner",
	Short: "Manage learner profiles",
}

var learnerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			return fmt.Errorf("--name is required")
		}
		strengths, _ := cmd.Flags().GetString("strengths")
		weaknesses, _ := cmd.Flags().GetString("weaknesses")
		interests, _ := cmd.Flags().GetString("interests")
		course, _ := cmd.Flags().GetString("course")
		year, _ := cmd.Flags().GetString("year")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		learner, err := s.Learners().Create(cmd.Context(), &store.Learner{
			Name:       name,
			Strengths:  strengths,
			Weaknesses: weaknesses,
			Interests:  interests,
			Course:     course,
			Year:       year,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Learner %d (%s) registered.\n", learner.ID, learner.Name)
		fmt.Printf("Next: skillpath roadmap new %d\n", learner.ID)
		return nil
	},
}

var learnerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered learners",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		learners, err := s.Learners().List(cmd.Context())
		if err != nil {
			return err
		}
		if len(learners) == 0 {
			fmt.Println("No learners registered yet. Add one with: skillpath learner add --name <name>")
			return nil
		}

		fmt.Printf("%-5s  %-20s  %-16s  %s\n", "ID", "Name", "Course", "Current Topic")
		for _, l := range learners {
			topic, err := s.Learners().CurrentTopic(cmd.Context(), l.ID)
			if err != nil {
				return err
			}
			if topic == "" {
				topic = "-"
			}
			fmt.Printf("%-5d  %-20s  %-16s  %s\n", l.ID, l.Name, l.Course, topic)
		}
		return nil
	},
}

func init() {
	learnerAddCmd.Flags().String("name", "", "Learner name (required)")
	learnerAddCmd.Flags().String("strengths", "", "Comma-separated strengths")
	learnerAddCmd.Flags().String("weaknesses", "", "Comma-separated weaknesses")
	learnerAddCmd.Flags().String("interests", "", "Comma-separated interests")
	learnerAddCmd.Flags().String("course", "", "Course of study")
	learnerAddCmd.Flags().String("year", "", "Year of study")

	learnerCmd.AddCommand(learnerAddCmd)
	learnerCmd.AddCommand(learnerListCmd)
}
