package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/de/internal/manifest"
	"github.com/tormodhaugland/de/internal/slug"
	"github.com/tormodhaugland/de/internal/workspace"
)

var initWorkspace string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a de.toml in the current directory and register it",
	Long: `Creates a de.toml manifest in the current directory (inferring
project.name from the directory basename) and registers it into a
workspace (--workspace, else the directory's parent basename).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return err
		}

		if _, statErr := os.Stat(filepath.Join(dir, manifest.Filename)); statErr == nil {
			return fmt.Errorf("%s already exists", manifest.Filename)
		}

		name := manifest.InferName(dir)

		var wsName slug.Slug
		if initWorkspace != "" {
			wsName, err = slug.From(initWorkspace)
			if err != nil {
				return err
			}
		} else {
			wsName = manifest.InferName(filepath.Dir(dir))
		}

		m := &manifest.ProjectManifest{
			Project: manifest.Project{Name: name, Workspace: wsName},
			Git:     manifest.DefaultGit(),
			Tasks:   make(map[slug.Slug]manifest.Task),
		}
		if err := m.Save(dir); err != nil {
			return err
		}

		ws, err := workspace.LoadFromName(wsName)
		if err != nil {
			ws = workspace.New(wsName)
		}
		if err := ws.AddProject(name, dir); err != nil {
			return err
		}
		if err := ws.Save(); err != nil {
			return err
		}

		if jsonOut {
			return jsonEncode(map[string]string{"project": name.String(), "workspace": wsName.String(), "dir": dir})
		}
		fmt.Printf("Created %s for project %q in workspace %q\n", manifest.Filename, name, wsName)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initWorkspace, "workspace", "", "workspace to register this project into")
	rootCmd.AddCommand(initCmd)
}
