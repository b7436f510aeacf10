package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/de/internal/deerrors"
	"github.com/tormodhaugland/de/internal/lifecycle"
	"github.com/tormodhaugland/de/internal/slug"
	"github.com/tormodhaugland/de/internal/snapshot"
	"github.com/tormodhaugland/de/internal/task"
	"github.com/tormodhaugland/de/internal/tui"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Operate on a workspace's own config (as opposed to its projects)",
}

var wsRunWorkspace string

var workspaceRunCmd = &cobra.Command{
	Use:   "run <task> [-- args...]",
	Short: "Invoke a workspace-level task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskName, err := slug.From(args[0])
		if err != nil {
			return err
		}
		ws, err := resolveWorkspace(wsRunWorkspace)
		if err != nil {
			return err
		}
		return task.Run(bgContext(), ws, task.Request{Task: taskName, Args: args[1:]})
	},
}

var (
	wsConfigWorkspace     string
	wsConfigDefaultBranch string
)

var workspaceConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Get or set this workspace's default_branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace(wsConfigWorkspace)
		if err != nil {
			return err
		}
		if wsConfigDefaultBranch == "" {
			if jsonOut {
				return jsonEncode(map[string]any{"default_branch": ws.DefaultBranch})
			}
			if ws.DefaultBranch == nil {
				fmt.Println("default_branch: (unset)")
			} else {
				fmt.Println("default_branch:", *ws.DefaultBranch)
			}
			return nil
		}
		branch := wsConfigDefaultBranch
		ws.DefaultBranch = &branch
		return ws.Save()
	},
}

var workspaceInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print a workspace's metadata",
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
			return jsonEncode(ws)
		}
		fmt.Println("name:", ws.Name)
		fmt.Println("projects:", len(ws.Projects))
		fmt.Println("tasks:", len(ws.Tasks))
		if ws.DefaultBranch != nil {
			fmt.Println("default_branch:", *ws.DefaultBranch)
		}
		return nil
	},
}

var (
	snapshotProfile  string
	snapshotOut      string
	snapshotChecksum bool
	snapshotYes      bool
)

var workspaceSnapshotCmd = &cobra.Command{
	Use:   "snapshot [workspace]",
	Short: "Capture a reproducible bootstrap snapshot of a workspace",
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

		out := snapshotOut
		if out == "" {
			out = ws.Name.String() + ".zip"
		}

		if _, statErr := os.Stat(out); statErr == nil && !snapshotYes {
			result, err := tui.RunConfirm(fmt.Sprintf("%s already exists. Overwrite it?", out))
			if err != nil || !result.Confirmed {
				return &deerrors.UserAbortedError{Reason: fmt.Sprintf("%s already exists", out)}
			}
		}

		loaded, _ := lifecycle.LoadProjects(ws)
		var inputs []snapshot.CreateInput
		for _, id := range ws.SortedProjectIDs() {
			p, ok := loaded[id]
			if !ok {
				continue
			}
			inputs = append(inputs, snapshot.CreateInput{ID: id, Dir: p.Dir, Man: p.Man, Profile: snapshotProfile})
		}

		err = snapshot.Create(bgContext(), snapshot.CreateOptions{
			WorkspaceName: ws.Name.String(),
			Projects:      inputs,
			Out:           out,
			WithChecksum:  snapshotChecksum,
			Warn:          func(s string) { fmt.Println("warning:", s) },
		})
		if err != nil {
			return err
		}
		fmt.Println("wrote", out)
		return nil
	},
}

func init() {
	workspaceRunCmd.Flags().StringVar(&wsRunWorkspace, "workspace", "", "workspace to resolve the task in")
	workspaceConfigCmd.Flags().StringVar(&wsConfigWorkspace, "workspace", "", "workspace to configure")
	workspaceConfigCmd.Flags().StringVar(&wsConfigDefaultBranch, "default-branch", "", "set the workspace's default_branch")
	workspaceSnapshotCmd.Flags().StringVar(&snapshotProfile, "profile", "", "setup profile to use")
	workspaceSnapshotCmd.Flags().StringVar(&snapshotOut, "out", "", "output zip path (default <workspace>.zip)")
	workspaceSnapshotCmd.Flags().BoolVar(&snapshotChecksum, "checksum", false, "compute and embed a sha256 checksum")
	workspaceSnapshotCmd.Flags().BoolVarP(&snapshotYes, "yes", "y", false, "overwrite an existing output zip without prompting")

	workspaceCmd.AddCommand(workspaceRunCmd, workspaceConfigCmd, workspaceInfoCmd, workspaceSnapshotCmd)
	rootCmd.AddCommand(workspaceCmd)
}
