// Package dispatch implements the fallthrough dispatcher (spec §4.9): when
// the CLI receives a verb outside the built-in command set, this decides
// whether it names a workspace project (so the next token is a task to run
// in it) or a task in the operator's current project.
package dispatch

import (
	"context"
	"errors"

	"github.com/tormodhaugland/de/internal/deerrors"
	"github.com/tormodhaugland/de/internal/globalconfig"
	"github.com/tormodhaugland/de/internal/slug"
	"github.com/tormodhaugland/de/internal/task"
	"github.com/tormodhaugland/de/internal/workspace"
)

// Outcome is the result of a fallthrough dispatch attempt, distinguishing
// "no active workspace" and "project or task not found" so the caller can
// print the right help text (spec §4.9 steps 1 and 4).
type Outcome int

const (
	// OutcomeRan means the dispatched task executed (see its returned error
	// for whether it succeeded).
	OutcomeRan Outcome = iota
	// OutcomeNoActiveWorkspace means there is no active workspace at all.
	OutcomeNoActiveWorkspace
	// OutcomeNotFound means neither a project nor a current-directory task
	// matched head.
	OutcomeNotFound
)

// Dispatch resolves (head, rest...) per spec §4.9: load the active
// workspace; if head matches a project id, run rest[0] as a task in that
// project with rest[1:]; else if currentProjectDir is inside a project,
// try head itself as a task there with rest; else report not-found.
func Dispatch(ctx context.Context, head string, rest []string, currentProjectDir string) (Outcome, error) {
	active, err := globalconfig.GetActiveWorkspace()
	if err != nil {
		return OutcomeNoActiveWorkspace, err
	}
	if active == nil {
		return OutcomeNoActiveWorkspace, nil
	}

	ws, err := workspace.LoadFromName(*active)
	if err != nil {
		return OutcomeNoActiveWorkspace, err
	}

	if headID, err := slug.From(head); err == nil {
		if _, ok := ws.Projects[headID]; ok {
			if len(rest) == 0 {
				return OutcomeNotFound, &deerrors.NotFoundError{Kind: "task", Name: "<none given>"}
			}
			taskName, err := slug.From(rest[0])
			if err != nil {
				return OutcomeNotFound, err
			}
			runErr := task.Run(ctx, ws, task.Request{
				Task:        taskName,
				Args:        rest[1:],
				ProjectHint: &headID,
			})
			return OutcomeRan, runErr
		}
	}

	if currentProjectDir != "" {
		taskName, err := slug.From(head)
		if err == nil {
			runErr := task.Run(ctx, ws, task.Request{
				Task:              taskName,
				Args:              rest,
				CurrentProjectDir: currentProjectDir,
			})
			if runErr == nil {
				return OutcomeRan, nil
			}
			var notFound *deerrors.NotFoundError
			if !errors.As(runErr, &notFound) {
				return OutcomeRan, runErr
			}
		}
	}

	return OutcomeNotFound, &deerrors.NotFoundError{Kind: "project-or-task", Name: head}
}
