package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhanush/skillpath/internal/store"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Generate and inspect learning roadmaps",
}

var roadmapNewCmd = &cobra.Command{
	Use:   "new <learner-id>",
	Short: "Generate a fresh roadmap for a learner",
	Long: "Picks a study topic from the learner's profile, breaks it into ordered subtopics\n" +
		"and replaces any unfinished roadmap entries. Completed entries are kept.",
	Args: cobra.ExactArgs(1),
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

		plan, err := a.Roadmap.Generate(cmd.Context(), learnerID)
		if err != nil {
			return err
		}

		fmt.Printf("Topic: %s\n\n", plan.Topic)
		printRoadmap(plan.Nodes)
		fmt.Printf("\nStart studying with: skillpath next %d\n", learnerID)
		return nil
	},
}

var roadmapListCmd = &cobra.Command{
	Use:   "list <learner-id>",
	Short: "Show a learner's current roadmap",
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

		if _, err := s.Learners().ByID(cmd.Context(), learnerID); err != nil {
			return err
		}
		nodes, err := s.Nodes().ListByLearner(cmd.Context(), learnerID)
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			fmt.Printf("No roadmap yet. Generate one with: skillpath roadmap new %d\n", learnerID)
			return nil
		}

		printRoadmap(nodes)
		return nil
	},
}

// printRoadmap renders nodes in position order, indenting remediation
// children under their parent.
func printRoadmap(nodes []store.Node) {
	fmt.Printf("%-4s  %-5s  %-8s  %s\n", "Pos", "ID", "Status", "Subtopic")
	fmt.Println(strings.Repeat("─", 72))
	for _, n := range nodes {
		indent := ""
		if n.ParentID != nil {
			indent = "  ↳ "
		}
		fmt.Printf("%-4d  %-5d  %-8s  %s%s\n", n.Position, n.ID, n.Status, indent, n.Subtopic)
	}
}

func init() {
	roadmapCmd.AddCommand(roadmapNewCmd)
	roadmapCmd.AddCommand(roadmapListCmd)
}
