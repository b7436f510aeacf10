package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/de/internal/dispatch"
)

var jsonOut bool

var rootCmd = &cobra.Command{
	Use:   "de",
	Short: "de - dependency-ordered developer workspace orchestrator",
	Long: `de registers several project directories under a named workspace,
describing each project's container services, task commands, git policy
and inter-project dependency list, then drives the whole collection with
one command line: start it, stop it, run per-project or workspace-wide
tasks, execute ad-hoc commands, coordinate git branch operations across
every repository, diagnose misconfiguration, and capture a reproducible
bootstrap snapshot.

An unrecognized first token is delivered to the fallthrough dispatcher:
if it names a registered project, the next token runs as a task in that
project; else if the current directory is inside a project, the token
itself runs as a task there.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		head := args[0]
		rest := args[1:]

		outcome, err := dispatch.Dispatch(bgContext(), head, rest, findCurrentProjectDir())
		switch outcome {
		case dispatch.OutcomeNoActiveWorkspace:
			fmt.Fprintln(os.Stderr, "no active workspace")
			return cmd.Help()
		case dispatch.OutcomeNotFound:
			fmt.Fprintln(os.Stderr, "project or task not found:", head)
			return cmd.Help()
		default:
			return err
		}
	},
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printErr(err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
}
