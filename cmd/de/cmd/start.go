package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/de/internal/globalconfig"
	"github.com/tormodhaugland/de/internal/lifecycle"
	"github.com/tormodhaugland/de/internal/slug"
	"github.com/tormodhaugland/de/internal/tui"
	"github.com/tormodhaugland/de/internal/workspace"
)

var startProject string

var startCmd = &cobra.Command{
	Use:   "start [workspace]",
	Short: "Spin up a workspace, or one project and its dependencies",
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

		if err := handleWorkingWorkspaceConflict(ws.Name); err != nil {
			return err
		}

		var outcomes []lifecycle.ProjectOutcome
		if startProject != "" {
			id, err := slug.From(startProject)
			if err != nil {
				return err
			}
			outcomes, err = lifecycle.SpinUpProjectAndDependencies(bgContext(), ws, id)
			if err != nil {
				return err
			}
		} else {
			outcomes, err = lifecycle.SpinUpWorkspace(bgContext(), ws)
			if err != nil {
				return err
			}
		}

		if err := globalconfig.SetActiveWorkspace(&ws.Name); err != nil {
			return err
		}

		return printLifecycleOutcomes("started", outcomes)
	},
}

// handleWorkingWorkspaceConflict implements spec §4.7/§9's "working
// workspace" preflight: if a different workspace is already active, offer
// abort / stop-then-start / start-alongside.
func handleWorkingWorkspaceConflict(target slug.Slug) error {
	active, err := globalconfig.GetActiveWorkspace()
	if err != nil {
		return err
	}
	if active == nil || *active == target {
		return nil
	}

	result, err := tui.RunChoice(
		fmt.Sprintf("workspace %q is already active. What now?", *active),
		[]string{"abort", "stop it and start " + target.String(), "start alongside it"},
	)
	if err != nil || result.Aborted || result.Index == 0 {
		return fmt.Errorf("aborted: workspace %q is already active", *active)
	}
	if result.Index == 1 {
		otherWs, err := workspace.LoadFromName(*active)
		if err != nil {
			return err
		}
		if _, err := lifecycle.SpinDownWorkspace(bgContext(), otherWs); err != nil {
			return err
		}
	}
	return nil
}

func printLifecycleOutcomes(verb string, outcomes []lifecycle.ProjectOutcome) error {
	if jsonOut {
		return jsonEncode(outcomes)
	}
	failed := 0
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failed++
			fmt.Printf("%s: failed (%v)\n", o.Project, o.Err)
		case o.Applied:
			fmt.Printf("%s: %s\n", o.Project, verb)
		default:
			fmt.Printf("%s: no compose file, skipped\n", o.Project)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d project(s) failed", failed)
	}
	return nil
}

func init() {
	startCmd.Flags().StringVar(&startProject, "project", "", "start only this project and its dependencies")
	rootCmd.AddCommand(startCmd)
}
