package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"rail-controls/internal/app"
)

var (
	showLimit int
	showRuns  bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display persisted decisions from the latest run",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Limit: showLimit,
			Runs:  showRuns,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of rows to display")
	showCmd.Flags().BoolVar(&showRuns, "runs", false, "Show run headers instead of decisions")
}
