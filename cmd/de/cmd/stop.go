package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tormodhaugland/de/internal/globalconfig"
	"github.com/tormodhaugland/de/internal/lifecycle"
)

var stopCmd = &cobra.Command{
	Use:   "stop [workspace]",
	Short: "Spin down a workspace in dependency-reversed order",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wsName := ""
		if len(args) == 1 {
			wsName = args[0]
		}
		ws, err := resolveWorkspace(wsName)
		if err != nil {
			return err
		}

		outcomes, err := lifecycle.SpinDownWorkspace(bgContext(), ws)
		if err != nil {
			return err
		}

		if active, err := globalconfig.GetActiveWorkspace(); err == nil && active != nil && *active == ws.Name {
			_ = globalconfig.SetActiveWorkspace(nil)
		}

		return printLifecycleOutcomes("stopped", outcomes)
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
