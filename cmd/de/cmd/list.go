package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [workspace]",
	Short: "List a workspace's projects and workspace-level tasks",
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

		if jsonOut {
			return jsonEncode(map[string]any{
				"name":     ws.Name,
				"projects": ws.Projects,
				"tasks":    ws.Tasks,
			})
		}

		fmt.Printf("workspace %s\n", ws.Name)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PROJECT\tDIR")
		for _, id := range ws.SortedProjectIDs() {
			fmt.Fprintf(w, "%s\t%s\n", id, ws.Projects[id].Dir)
		}
		w.Flush()

		if len(ws.Tasks) > 0 {
			fmt.Println("workspace tasks:")
			for name, cmdline := range ws.Tasks {
				fmt.Printf("  %s: %s\n", name, cmdline)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
