package cli

import (
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the controls file without running an evaluation",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Validate()
	},
}
