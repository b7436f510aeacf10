package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/de/internal/snapshot"
)

var setupCmd = &cobra.Command{
	Use:   "setup <snapshot> [target]",
	Short: "Apply a snapshot zip to a fresh target directory",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) == 2 {
			target = args[1]
		}

		result, err := snapshot.Apply(bgContext(), snapshot.ApplyOptions{ZipPath: args[0], TargetDir: target})
		if err != nil {
			return err
		}

		if jsonOut {
			if err := jsonEncode(result); err != nil {
				return err
			}
		} else {
			for project, failErr := range result.Failures {
				fmt.Fprintf(os.Stderr, "Error: %s: %v\n", project, failErr)
			}
			if len(result.Failures) == 0 {
				fmt.Println("applied snapshot to", target)
			}
		}

		if len(result.Failures) > 0 {
			return fmt.Errorf("%d project(s) failed", len(result.Failures))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
