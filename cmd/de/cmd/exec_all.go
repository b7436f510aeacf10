package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var execAllCmd = &cobra.Command{
	Use:   "exec-all [-- cmd...]",
	Short: "Run an ad-hoc command in every project's directory",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace("")
		if err != nil {
			return err
		}

		failed := 0
		for _, id := range ws.SortedProjectIDs() {
			dir := ws.Projects[id].Dir
			if err := runInDir(bgContext(), dir, args); err != nil {
				failed++
				fmt.Printf("%s: failed (%v)\n", id, err)
				continue
			}
			fmt.Printf("%s: ok\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d project(s) failed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(execAllCmd)
}
