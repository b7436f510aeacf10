package gitengine

import (
	"fmt"

	"github.com/tormodhaugland/de/internal/slug"
	"github.com/tormodhaugland/de/internal/tui"
)

// InteractivePrompter implements Prompter via the bubbletea choice menu
// (spec §4.10: "Prompt interactively offers {stash-and-proceed,
// force-and-discard, skip-this-project, abort-all}"). A tea.Program error
// (e.g. no TTY attached) degrades to ChoiceAbortAll / UnpushedAbort so a
// non-interactive run fails safe instead of hanging.
type InteractivePrompter struct{}

func (InteractivePrompter) ResolveDirty(project slug.Slug) DirtyChoice {
	result, err := tui.RunChoice(
		fmt.Sprintf("%s has uncommitted changes. What now?", project),
		[]string{"stash and proceed", "force and discard", "skip this project", "abort all"},
	)
	if err != nil || result.Aborted {
		return ChoiceAbortAll
	}
	switch result.Index {
	case 0:
		return ChoiceStashAndProceed
	case 1:
		return ChoiceForceAndDiscard
	case 2:
		return ChoiceSkipProject
	default:
		return ChoiceAbortAll
	}
}

func (InteractivePrompter) ResolveUnpushed(project slug.Slug, count int) UnpushedChoice {
	result, err := tui.RunChoice(
		fmt.Sprintf("%s has %d unpushed commit(s). What now?", project, count),
		[]string{"push", "skip", "abort", "proceed anyway"},
	)
	if err != nil || result.Aborted {
		return UnpushedAbort
	}
	switch result.Index {
	case 0:
		return UnpushedPush
	case 1:
		return UnpushedSkip
	case 3:
		return UnpushedProceed
	default:
		return UnpushedAbort
	}
}
