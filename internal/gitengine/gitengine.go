// Package gitengine implements the multi-repo switch and base-reset
// commands (spec §4.10), sequencing gitrepo's single-repo primitives
// across a workspace's projects with a shared dirty policy and a final
// per-project outcome summary.
package gitengine

import (
	"github.com/tormodhaugland/de/internal/gitrepo"
	"github.com/tormodhaugland/de/internal/slug"
)

// OnDirtyAction is the operator's chosen handling for a dirty working
// tree, per spec §4.10.
type OnDirtyAction int

const (
	// OnDirtyPrompt interactively offers stash/force/skip/abort per project.
	OnDirtyPrompt OnDirtyAction = iota
	// OnDirtyStash runs `git stash push -u` for every dirty project.
	OnDirtyStash
	// OnDirtyForce discards local changes (reset --hard, or checkout --force).
	OnDirtyForce
	// OnDirtyAbort aborts the whole run on the first dirty project found.
	OnDirtyAbort
)

// DirtyChoice is what a Prompt resolves to for one specific project.
type DirtyChoice int

const (
	ChoiceStashAndProceed DirtyChoice = iota
	ChoiceForceAndDiscard
	ChoiceSkipProject
	ChoiceAbortAll
)

// Prompter resolves interactive decisions the engine can't make on its
// own; cmd/de supplies the bubbletea-backed implementation, tests supply a
// canned one.
type Prompter interface {
	// ResolveDirty is asked once per dirty project when the policy is
	// OnDirtyPrompt.
	ResolveDirty(project slug.Slug) DirtyChoice
	// ResolveUnpushed is asked by base_reset when a project has unpushed
	// commits on its current branch.
	ResolveUnpushed(project slug.Slug, count int) UnpushedChoice
}

// UnpushedChoice is the operator's answer to an unpushed-commits warning.
type UnpushedChoice int

const (
	UnpushedPush UnpushedChoice = iota
	UnpushedSkip
	UnpushedAbort
	UnpushedProceed
)

// Target is one project gitengine operates over.
type Target struct {
	ID         slug.Slug
	Dir        string
	GitEnabled bool
}

// Outcome records one project's result for the final summary (spec §4.10:
// "Each project's outcome (success / skipped / failed) is recorded").
type Outcome struct {
	Project slug.Slug
	Status  OutcomeStatus
	Err     error
}

type OutcomeStatus int

const (
	StatusSuccess OutcomeStatus = iota
	StatusSkipped
	StatusFailed
)

// dirtyResolution is applyDirtyPolicy's outcome: at most one of Stashed,
// AbortAll, Skip, Force is true, the rest are side effects already applied
// (or, for Force, still owed to the caller).
type dirtyResolution struct {
	Stashed  bool
	AbortAll bool
	Skip     bool
	Force    bool
}

// applyDirtyPolicy resolves a single project's dirty-tree handling exactly
// once (never prompts twice for the same project), applying the stash
// immediately when chosen so the caller only needs to act on Force.
func applyDirtyPolicy(dir string, id slug.Slug, policy OnDirtyAction, prompter Prompter) (dirtyResolution, error) {
	if !gitrepo.IsDirty(dir) {
		return dirtyResolution{}, nil
	}

	switch resolvedChoice(id, policy, prompter) {
	case ChoiceStashAndProceed:
		if err := gitrepo.StashPushUntracked(dir); err != nil {
			return dirtyResolution{}, err
		}
		return dirtyResolution{Stashed: true}, nil
	case ChoiceForceAndDiscard:
		return dirtyResolution{Force: true}, nil
	case ChoiceSkipProject:
		return dirtyResolution{Skip: true}, nil
	case ChoiceAbortAll:
		return dirtyResolution{AbortAll: true}, nil
	}
	return dirtyResolution{}, nil
}

func resolvedChoice(id slug.Slug, policy OnDirtyAction, prompter Prompter) DirtyChoice {
	switch policy {
	case OnDirtyStash:
		return ChoiceStashAndProceed
	case OnDirtyForce:
		return ChoiceForceAndDiscard
	case OnDirtyAbort:
		return ChoiceAbortAll
	default:
		return prompter.ResolveDirty(id)
	}
}
