package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var gradeCmd = &cobra.Command{
	Use:   "grade <unit-id> <answer>...",
	Short: "Grade a quiz attempt for a unit",
	Long: "Scores the submitted answers against the unit's quiz, in question order.\n" +
		"Passing (60% or more) completes the unit; failing splits the subtopic into\n" +
		"simpler remedial steps.",
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		unitID, err := parseID(args[0], "unit")
		if err != nil {
			return err
		}
		answers := args[1:]

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Grader.Grade(cmd.Context(), unitID, answers)
		if err != nil {
			return err
		}

		fmt.Printf("Score: %d%% (%d/%d correct)\n\n", result.ScorePct, result.Correct, result.Total)
		for i, q := range result.Questions {
			mark := "✓"
			if !q.Correct {
				mark = "✗"
			}
			fmt.Printf("%2d. %s %s\n", i+1, mark, q.Question)
			if !q.Correct {
				fmt.Printf("      your answer: %s\n", q.Submitted)
				fmt.Printf("      correct:     %s\n", q.CorrectAnswer)
			}
		}
		fmt.Println()

		if result.Passed {
			fmt.Println("Passed! Subtopic complete.")
			return nil
		}

		fmt.Println("Not passed. The subtopic was split into simpler steps:")
		fmt.Println(strings.Repeat("─", 72))
		printRoadmap(result.Split.Roadmap)
		return nil
	},
}
