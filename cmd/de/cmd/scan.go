package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/de/internal/discovery"
	"github.com/tormodhaugland/de/internal/slug"
)

var scanWorkspace string

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Recursively discover de.toml manifests and register them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		var filter *slug.Slug
		if scanWorkspace != "" {
			id, err := slug.From(scanWorkspace)
			if err != nil {
				return err
			}
			filter = &id
		}

		result, err := discovery.Scan(root, filter)
		if err != nil {
			return err
		}

		if jsonOut {
			return jsonEncode(result)
		}
		fmt.Printf("registered %d project(s)\n", result.Registered)
		for _, e := range result.Errors {
			fmt.Fprintln(os.Stderr, "Error:", e)
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanWorkspace, "workspace", "", "only register projects claiming this workspace")
	rootCmd.AddCommand(scanCmd)
}
