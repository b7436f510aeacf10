package cmd

import (
	"context"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/de/internal/deerrors"
	"github.com/tormodhaugland/de/internal/slug"
)

var execCmd = &cobra.Command{
	Use:   "exec <project> [-- cmd...]",
	Short: "Run an ad-hoc command in a project's directory",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := slug.From(args[0])
		if err != nil {
			return err
		}
		ws, err := resolveWorkspace("")
		if err != nil {
			return err
		}
		wp, ok := ws.Projects[id]
		if !ok {
			return &deerrors.NotFoundError{Kind: "project", Name: id.String()}
		}
		return runInDir(bgContext(), wp.Dir, args[1:])
	},
}

func runInDir(ctx context.Context, dir string, tokens []string) error {
	if len(tokens) == 0 {
		return &deerrors.SchemaViolationError{Field: "command", Message: "empty command"}
	}
	c := exec.CommandContext(ctx, tokens[0], tokens[1:]...)
	c.Dir = dir
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return &deerrors.SubprocessError{Command: tokens[0], ExitCode: exitCode}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(execCmd)
}
