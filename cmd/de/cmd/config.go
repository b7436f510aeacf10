package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/de/internal/globalconfig"
	"github.com/tormodhaugland/de/internal/slug"
)

var configCmd = &cobra.Command{
	Use:   "config <key> [value]",
	Short: "Get or set a global config value",
	Long:  `The only known key today is active.workspace. With no value, prints the current setting; with "value", sets it; with "-", clears it.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if key != "active.workspace" {
			return fmt.Errorf("unknown config key %q", key)
		}

		if len(args) == 1 {
			active, err := globalconfig.GetActiveWorkspace()
			if err != nil {
				return err
			}
			if active == nil {
				if jsonOut {
					return jsonEncode(map[string]any{"active.workspace": nil})
				}
				fmt.Println("(unset)")
				return nil
			}
			if jsonOut {
				return jsonEncode(map[string]any{"active.workspace": active.String()})
			}
			fmt.Println(*active)
			return nil
		}

		value := args[1]
		if value == "-" {
			return globalconfig.SetActiveWorkspace(nil)
		}
		id, err := slug.From(value)
		if err != nil {
			return err
		}
		return globalconfig.SetActiveWorkspace(&id)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
