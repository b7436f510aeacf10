package gitengine

import (
	"fmt"
	"os/exec"

	"github.com/tormodhaugland/de/internal/gitrepo"
)

// BaseResetOptions configures one BaseReset run.
type BaseResetOptions struct {
	BaseBranch string // explicit target branch; empty means the project's remote default branch (origin/HEAD, else "main")
	OnDirty    OnDirtyAction
}

// BaseReset implements spec §4.10's base_reset operation: for each
// git-enabled target in order, fetch, check for unpushed commits (prompt
// if any), apply the dirty policy, checkout the target branch (local if it
// exists, else created from origin), hard-reset to origin, and clean.
func BaseReset(targets []Target, opts BaseResetOptions, prompter Prompter) []Outcome {
	outcomes := make([]Outcome, 0, len(targets))

	for _, target := range targets {
		if !target.GitEnabled {
			outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusSkipped})
			continue
		}

		if err := gitrepo.FetchAllPrune(target.Dir); err != nil {
			outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusFailed, Err: err})
			continue
		}

		branch := opts.BaseBranch
		if branch == "" {
			branch = gitrepo.DefaultRemoteBranch(target.Dir)
		}

		current := branch
		if info, err := gitrepo.GetInfo(target.Dir); err == nil && info.Branch != "" {
			current = info.Branch
		}

		if count, err := gitrepo.UnpushedCount(target.Dir, current); err == nil && count > 0 {
			switch prompter.ResolveUnpushed(target.ID, count) {
			case UnpushedAbort:
				outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusFailed, Err: errAborted})
				return outcomes
			case UnpushedSkip:
				outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusSkipped})
				continue
			case UnpushedPush:
				if out, err := exec.Command("git", "-C", target.Dir, "push").CombinedOutput(); err != nil {
					outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusFailed, Err: fmt.Errorf("git push: %w: %s", err, out)})
					continue
				}
			case UnpushedProceed:
				// fall through, reset anyway
			}
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
		if resolution.Force {
			if err := gitrepo.ResetHard(target.Dir, "HEAD"); err != nil {
				outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusFailed, Err: err})
				continue
			}
		}

		if gitrepo.LocalBranchExists(target.Dir, branch) {
			if err := gitrepo.Checkout(target.Dir, branch, true); err != nil {
				outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusFailed, Err: err})
				continue
			}
		} else if err := gitrepo.CheckoutNewFromRemote(target.Dir, branch, "origin"); err != nil {
			outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusFailed, Err: err})
			continue
		}

		if err := gitrepo.ResetHard(target.Dir, "origin/"+branch); err != nil {
			outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusFailed, Err: err})
			continue
		}
		if err := gitrepo.CleanForceDirs(target.Dir); err != nil {
			outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusFailed, Err: err})
			continue
		}

		outcomes = append(outcomes, Outcome{Project: target.ID, Status: StatusSuccess})
	}

	return outcomes
}
