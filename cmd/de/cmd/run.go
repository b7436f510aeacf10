package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tormodhaugland/de/internal/globalconfig"
	"github.com/tormodhaugland/de/internal/slug"
	"github.com/tormodhaugland/de/internal/task"
	"github.com/tormodhaugland/de/internal/workspace"
)

var (
	runProject   string
	runWorkspace string
)

var runCmd = &cobra.Command{
	Use:   "run <task> [-- args...]",
	Short: "Run a project- or workspace-scoped task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskName, err := slug.From(args[0])
		if err != nil {
			return err
		}

		req := task.Request{
			Task:               taskName,
			Args:               args[1:],
			CurrentProjectDir:  findCurrentProjectDir(),
		}
		if runProject != "" {
			id, err := slug.From(runProject)
			if err != nil {
				return err
			}
			req.ProjectHint = &id
		}
		if runWorkspace != "" {
			id, err := slug.From(runWorkspace)
			if err != nil {
				return err
			}
			req.WorkspaceHint = &id
		}
		if active, err := globalconfig.GetActiveWorkspace(); err == nil {
			req.ActiveWorkspace = active
		}

		wsName, err := task.ResolveWorkspaceName(req, currentProjectWorkspace())
		if err != nil {
			return err
		}
		ws, err := workspace.LoadFromName(wsName)
		if err != nil {
			return err
		}

		return task.Run(bgContext(), ws, req)
	},
}

func init() {
	runCmd.Flags().StringVar(&runProject, "project", "", "run the task in this project")
	runCmd.Flags().StringVar(&runWorkspace, "workspace", "", "resolve the task in this workspace")
	rootCmd.AddCommand(runCmd)
}
