package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/de/internal/gitengine"
	"github.com/tormodhaugland/de/internal/lifecycle"
	"github.com/tormodhaugland/de/internal/workspace"
)

var gitCmd = &cobra.Command{
	Use:   "git",
	Short: "Multi-repo git operations across a workspace",
}

var (
	gitSwitchFallback string
	gitSwitchOnDirty  string
	gitResetBranch    string
	gitResetOnDirty   string
)

var gitSwitchCmd = &cobra.Command{
	Use:   "switch [query]",
	Short: "Check out a branch (or its closest match) across every git-enabled project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}

		ws, err := resolveWorkspace("")
		if err != nil {
			return err
		}
		policy, err := parseOnDirty(gitSwitchOnDirty)
		if err != nil {
			return err
		}

		targets, err := gitTargets(ws)
		if err != nil {
			return err
		}

		wsDefault := ""
		if ws.DefaultBranch != nil {
			wsDefault = *ws.DefaultBranch
		}

		outcomes := gitengine.Switch(targets, gitengine.SwitchOptions{
			Query:            query,
			Fallback:         gitSwitchFallback,
			WorkspaceDefault: wsDefault,
			OnDirty:          policy,
		}, gitengine.InteractivePrompter{})

		return printGitOutcomes(outcomes)
	},
}

var gitBaseResetCmd = &cobra.Command{
	Use:   "base-reset",
	Short: "Fetch, reset to origin, and clean every git-enabled project",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace("")
		if err != nil {
			return err
		}
		policy, err := parseOnDirty(gitResetOnDirty)
		if err != nil {
			return err
		}

		targets, err := gitTargets(ws)
		if err != nil {
			return err
		}

		outcomes := gitengine.BaseReset(targets, gitengine.BaseResetOptions{
			BaseBranch: gitResetBranch,
			OnDirty:    policy,
		}, gitengine.InteractivePrompter{})

		return printGitOutcomes(outcomes)
	},
}

func gitTargets(ws *workspace.Config) ([]gitengine.Target, error) {
	loaded, _ := lifecycle.LoadProjects(ws)
	var targets []gitengine.Target
	for _, id := range ws.SortedProjectIDs() {
		p, ok := loaded[id]
		if !ok {
			continue
		}
		targets = append(targets, gitengine.Target{ID: id, Dir: p.Dir, GitEnabled: p.Man.Git.Enabled})
	}
	return targets, nil
}

func parseOnDirty(s string) (gitengine.OnDirtyAction, error) {
	switch s {
	case "", "prompt":
		return gitengine.OnDirtyPrompt, nil
	case "stash":
		return gitengine.OnDirtyStash, nil
	case "force":
		return gitengine.OnDirtyForce, nil
	case "abort":
		return gitengine.OnDirtyAbort, nil
	default:
		return 0, fmt.Errorf("unknown --on-dirty value %q (want prompt|stash|force|abort)", s)
	}
}

func printGitOutcomes(outcomes []gitengine.Outcome) error {
	if jsonOut {
		return jsonEncode(outcomes)
	}
	failed := 0
	for _, o := range outcomes {
		switch o.Status {
		case gitengine.StatusSuccess:
			fmt.Printf("%s: ok\n", o.Project)
		case gitengine.StatusSkipped:
			fmt.Printf("%s: skipped\n", o.Project)
		case gitengine.StatusFailed:
			failed++
			fmt.Printf("%s: failed (%v)\n", o.Project, o.Err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d project(s) failed", failed)
	}
	return nil
}

func init() {
	gitSwitchCmd.Flags().StringVar(&gitSwitchFallback, "fallback", "", "branch to fall back to when the target doesn't exist in a project")
	gitSwitchCmd.Flags().StringVar(&gitSwitchOnDirty, "on-dirty", "prompt", "prompt|stash|force|abort")
	gitBaseResetCmd.Flags().StringVar(&gitResetBranch, "base-branch", "", "branch to reset to (default: the project's remote default branch)")
	gitBaseResetCmd.Flags().StringVar(&gitResetOnDirty, "on-dirty", "prompt", "prompt|stash|force|abort")

	gitCmd.AddCommand(gitSwitchCmd, gitBaseResetCmd)
	rootCmd.AddCommand(gitCmd)
}
