package gitengine

import (
	"fmt"

	"github.com/tormodhaugland/de/internal/gitrepo"
	"github.com/tormodhaugland/de/internal/tui"
)

// SwitchOptions configures one Switch run.
type SwitchOptions struct {
	Query          string // target branch name or substring; empty means just reuse Fallback
	Fallback       string // explicit fallback, takes precedence over workspace default_branch
	WorkspaceDefault string
	OnDirty        OnDirtyAction
}

// Switch implements spec §4.10's switch operation across targets, in the
// order given (callers pass workspace-sorted order). force is applied to
// the final checkout when the dirty policy resolved to ChoiceForceAndDiscard.
func Switch(targets []Target, opts SwitchOptions, prompter Prompter) []Outcome {
	outcomes := make([]Outcome, 0, len(targets))

	for _, target := range targets {
		if !target.GitEnabled {
			outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusSkipped})
			continue
		}

		resolution, err := applyDirtyPolicy(target.Dir, target.ID, opts.OnDirty, prompter)
		if resolution.AbortAll {
			outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusFailed, Err: errAborted})
			break
		}
		if resolution.Skip {
			outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusSkipped})
			continue
		}
		if err != nil {
			outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusFailed, Err: err})
			continue
		}

		branch := resolveCheckoutBranch(target.Dir, opts)

		if err := gitrepo.Checkout(target.Dir, branch, resolution.Force); err != nil {
			outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusFailed, Err: err})
			continue
		}

		if resolution.Stashed {
			if err := gitrepo.StashPop(target.Dir); err != nil {
				outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusFailed, Err: err})
				continue
			}
		}

		// Merge-conflict detection: a stash pop or force checkout can leave
		// the tree dirty again; re-check.
		if gitrepo.IsDirty(target.Dir) {
			outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusFailed, Err: errMergeConflict})
			continue
		}

		outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusSuccess})
	}

	return outcomes
}

// resolveCheckoutBranch implements the fallback chain: explicit target (if
// it exists) > explicit fallback > workspace default_branch >
// get_default_branch(project) > "main".
func resolveCheckoutBranch(dir string, opts SwitchOptions) string {
	if opts.Query != "" {
		refs, err := gitrepo.ListBranchesByRecency(dir)
		if err == nil {
			match, multiple := gitrepo.ResolveTargetBranch(refs, opts.Query)
			if match != "" {
				return match
			}
			if len(multiple) > 1 {
				msg := fmt.Sprintf("%q matches several branches in %s; pick one:", opts.Query, dir)
				if res, err := tui.RunChoice(msg, multiple); err == nil && !res.Aborted {
					return multiple[res.Index]
				}
			}
		}
	}
	if opts.Fallback != "" {
		return opts.Fallback
	}
	if opts.WorkspaceDefault != "" {
		return opts.WorkspaceDefault
	}
	return gitrepo.DefaultRemoteBranch(dir)
}
