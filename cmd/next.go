package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var nextCmd = &cobra.Command{
	Use:   "next <learner-id>",
	Short: "Get the learner's next unit with its lesson and quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		learnerID, err := parseID(args[0], "learner")
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sel, err := a.Selector.Next(cmd.Context(), learnerID)
		if err != nil {
			return err
		}
		if sel.Complete {
			fmt.Println("Curriculum complete — every subtopic is done. \U0001F389")
			fmt.Printf("Generate a new roadmap with: skillpath roadmap new %d\n", learnerID)
			return nil
		}

		sep := strings.Repeat("─", 72)

		fmt.Printf("Unit %d: %s\n", sel.Unit.ID, sel.Unit.Title)
		fmt.Printf("Subtopic: %s (node %d, ~%d min)\n", sel.Node.Subtopic, sel.Node.ID, sel.Unit.EstimatedMinutes)
		fmt.Println(sep)
		fmt.Println(sel.Content.LessonText)

		if len(sel.Content.Resources) > 0 {
			fmt.Println(sep)
			fmt.Println("Read more:")
			for _, r := range sel.Content.Resources {
				fmt.Printf("  - %s\n", r)
			}
		}
		if len(sel.Content.Videos) > 0 {
			fmt.Println("Watch:")
			for _, v := range sel.Content.Videos {
				fmt.Printf("  - %s\n", v)
			}
		}

		fmt.Println(sep)
		fmt.Printf("Quiz (%d questions):\n\n", len(sel.Content.Quiz))
		for i, q := range sel.Content.Quiz {
			fmt.Printf("%d. [%s] %s\n", i+1, q.Difficulty, q.Question)
			for j, opt := range q.Options {
				fmt.Printf("   %c) %s\n", 'a'+j, opt)
			}
			fmt.Println()
		}

		fmt.Printf("Submit answers with: skillpath grade %d \"<answer 1>\" \"<answer 2>\" ...\n", sel.Unit.ID)
		return nil
	},
}
