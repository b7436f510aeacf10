package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/de/internal/discovery"
	"github.com/tormodhaugland/de/internal/paths"
	"github.com/tormodhaugland/de/internal/slug"
	"github.com/tormodhaugland/de/internal/workspace"
)

var (
	updateAll       bool
	updateWorkspace string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Reconcile workspace registrations against disk",
	Long: `Removes registrations whose de.toml is missing or whose manifest
claims a different workspace, and re-adds entries whose project.name
changed, per workspace (--all for every known workspace, --workspace for
one, or the current project's workspace when neither is given).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if updateAll {
			return updateAllWorkspaces()
		}
		if updateWorkspace != "" {
			id, err := slug.From(updateWorkspace)
			if err != nil {
				return err
			}
			return updateOne(id)
		}

		dir := findCurrentProjectDir()
		if dir == "" {
			return fmt.Errorf("not inside a registered project; pass --all or --workspace")
		}
		if err := discovery.UpdateCurrentProject(dir); err != nil {
			return err
		}
		fmt.Println("reconciled current project's registration")
		return nil
	},
}

func updateOne(id slug.Slug) error {
	ws, err := workspace.LoadFromName(id)
	if err != nil {
		return err
	}
	result, err := discovery.UpdateWorkspace(ws)
	if err != nil {
		return err
	}
	if jsonOut {
		return jsonEncode(map[string]any{"workspace": id, "updated": result.Updated, "removed": result.Removed})
	}
	fmt.Printf("%s: updated=%d removed=%d\n", id, result.Updated, result.Removed)
	return nil
}

func updateAllWorkspaces() error {
	dir, err := paths.WorkspacesDir()
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".toml")
		id, err := slug.From(name)
		if err != nil {
			continue
		}
		if err := updateOne(id); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	updateCmd.Flags().BoolVar(&updateAll, "all", false, "reconcile every known workspace")
	updateCmd.Flags().StringVar(&updateWorkspace, "workspace", "", "reconcile one workspace by name")
	rootCmd.AddCommand(updateCmd)
}
