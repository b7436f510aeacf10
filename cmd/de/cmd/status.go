package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/de/internal/lifecycle"
	"github.com/tormodhaugland/de/internal/status"
)

var statusCmd = &cobra.Command{
	Use:   "status [workspace]",
	Short: "Show per-project presence, docker services, and git state",
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

		currentDir := findCurrentProjectDir()
		loaded, _ := lifecycle.LoadProjects(ws)

		var statuses []status.ProjectStatus
		for _, id := range ws.SortedProjectIDs() {
			p, ok := loaded[id]
			if !ok {
				statuses = append(statuses, status.ProjectStatus{Project: id, Present: false})
				continue
			}
			statuses = append(statuses, status.Collect(bgContext(), id, p.Dir, p.Man, currentDir))
		}

		summary := status.Summarize(statuses)

		if jsonOut {
			return jsonEncode(map[string]any{"projects": statuses, "summary": summary})
		}

		for _, ps := range statuses {
			printProjectStatus(ps)
		}
		printSummary(summary)
		return nil
	},
}

func printProjectStatus(ps status.ProjectStatus) {
	marker := ""
	if ps.Current {
		marker = " (current)"
	}
	if !ps.Present {
		fmt.Printf("%s%s: missing\n", ps.Project, marker)
		return
	}
	fmt.Printf("%s%s:\n", ps.Project, marker)
	if ps.Git.Enabled {
		if !ps.Git.IsRepo {
			fmt.Println("  git: not a git repo")
		} else {
			dirty := ""
			if ps.Git.Dirty {
				dirty = " dirty"
			}
			fmt.Printf("  git: %s (ahead %d, behind %d)%s\n", ps.Git.Branch, ps.Git.Ahead, ps.Git.Behind, dirty)
		}
	} else {
		fmt.Println("  git: disabled")
	}
	for _, svc := range ps.DockerServices {
		fmt.Printf("  %s: %s\n", svc.Name, svc.Status)
	}
}

func printSummary(s status.Summary) {
	fmt.Printf("summary: dirty=%d ahead=%d behind=%d downed=%d\n", s.DirtyCount, s.AheadCount, s.BehindCount, s.DownedCount)
	for _, r := range s.Remediations {
		fmt.Println("  ->", r)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
