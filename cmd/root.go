package cmd

import (
	"fmt"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dhanush/skillpath/internal/app"
	"github.com/dhanush/skillpath/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "skillpath",
	Short: "Adaptive learning roadmaps in your terminal",
	Long: "Skillpath builds a personal study roadmap for each learner, generates lessons and\n" +
		"quizzes on demand, and splits any failed subtopic into simpler remedial steps.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() {
		// Missing .env is fine; the environment may be set directly.
		_ = godotenv.Load()
	})

	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SKILLPATH_DB env var)")

	rootCmd.AddCommand(learnerCmd)
	rootCmd.AddCommand(roadmapCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then SKILLPATH_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openApp builds the full service wiring for a command invocation.
// The caller must Close the returned app.
func openApp(cmd *cobra.Command) (*app.App, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	return app.New(cmd.Context(), dbPath)
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}
