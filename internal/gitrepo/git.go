// Package gitrepo wraps the git subprocess calls behind the multi-repo
// switch/base-reset engine (spec §4.10) and the plain per-repo status
// queries the status engine needs (spec §4.11). Grounded on the teacher's
// internal/git: same os/exec-per-call style, same RepoInfo shape, extended
// with the fetch/branch/checkout/reset/stash operations the teacher never
// needed.
package gitrepo

import (
	"bytes"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tormodhaugland/de/internal/deerrors"
)

// RepoInfo is a snapshot of one repository's basic state.
type RepoInfo struct {
	Path       string
	Head       string
	Branch     string
	Dirty      bool
	Remote     string
	LastCommit time.Time
}

// IsRepo reports whether path is inside a git working tree.
func IsRepo(path string) bool {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--git-dir")
	return cmd.Run() == nil
}

// GetInfo gathers head, branch, dirty flag, remote and last-commit time
// for repoPath. Individual sub-queries that fail (e.g. no commits yet,
// no remote configured) are left at their zero value rather than failing
// the whole call.
func GetInfo(repoPath string) (*RepoInfo, error) {
	info := &RepoInfo{Path: repoPath}

	head, err := run(repoPath, "rev-parse", "--short", "HEAD")
	if err != nil {
		return nil, err
	}
	info.Head = head

	if branch, err := run(repoPath, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		info.Branch = branch
	}

	info.Dirty = IsDirty(repoPath)

	if remote, err := run(repoPath, "remote", "get-url", "origin"); err == nil {
		info.Remote = remote
	}

	if raw, err := run(repoPath, "log", "-1", "--format=%cI"); err == nil {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			info.LastCommit = t
		}
	}

	return info, nil
}

// IsDirty reports whether repoPath has any uncommitted changes.
func IsDirty(repoPath string) bool {
	out, err := run(repoPath, "status", "--porcelain")
	if err != nil {
		return false
	}
	return out != ""
}

// Clone clones url into destPath.
func Clone(url, destPath string) error {
	cmd := exec.Command("git", "clone", url, destPath)
	return runCmd(cmd)
}

// Checkout runs `git checkout [--force] <branch>`.
func Checkout(repoPath, branch string, force bool) error {
	args := []string{"checkout"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, branch)
	_, err := run(repoPath, args...)
	return err
}

// CheckoutNewFromRemote runs `git checkout -b <branch> origin/<branch>`, used
// by base_reset when the target branch has no local ref yet.
func CheckoutNewFromRemote(repoPath, branch, remote string) error {
	_, err := run(repoPath, "checkout", "-b", branch, remote+"/"+branch)
	return err
}

// LocalBranchExists reports whether branch has a local ref.
func LocalBranchExists(repoPath, branch string) bool {
	_, err := run(repoPath, "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil
}

// FetchAllPrune runs `git fetch --all --prune`.
func FetchAllPrune(repoPath string) error {
	_, err := run(repoPath, "fetch", "--all", "--prune")
	return err
}

// UnpushedCount returns the count from `git rev-list --count origin/<branch>..<branch>`.
func UnpushedCount(repoPath, branch string) (int, error) {
	out, err := run(repoPath, "rev-list", "--count", "origin/"+branch+".."+branch)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(out)
}

// ResetHard runs `git reset --hard <ref>`.
func ResetHard(repoPath, ref string) error {
	_, err := run(repoPath, "reset", "--hard", ref)
	return err
}

// CleanForceDirs runs `git clean -fd`.
func CleanForceDirs(repoPath string) error {
	_, err := run(repoPath, "clean", "-fd")
	return err
}

// StashPushUntracked runs `git stash push -u`.
func StashPushUntracked(repoPath string) error {
	_, err := run(repoPath, "stash", "push", "-u")
	return err
}

// StashPop runs `git stash pop`.
func StashPop(repoPath string) error {
	_, err := run(repoPath, "stash", "pop")
	return err
}

// DefaultRemoteBranch resolves origin/HEAD's target branch name via
// `git rev-parse --abbrev-ref origin/HEAD`, falling back to "main" when
// the query fails (no remote, detached, etc.) per spec §4.10's fallback
// chain for switch's checkout_branch resolution.
func DefaultRemoteBranch(repoPath string) string {
	out, err := run(repoPath, "rev-parse", "--abbrev-ref", "origin/HEAD")
	if err != nil || out == "" {
		return "main"
	}
	return strings.TrimPrefix(out, "origin/")
}

// BranchRef is one entry from a for-each-ref branch/commit-date listing.
type BranchRef struct {
	Name string
	Date time.Time
}

// ListBranchesByRecency runs the for-each-ref query spec §4.10 names for
// switch's target-branch resolution, deduplicating basenames (keeping the
// first, most-recent occurrence between local and remote refs) and sorting
// by commit date descending, then name ascending.
func ListBranchesByRecency(repoPath string) ([]BranchRef, error) {
	out, err := run(repoPath, "for-each-ref",
		"--sort=-committerdate", "refs/heads/", "refs/remotes/",
		"--format=%(committerdate:iso8601) %(refname:short)")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var refs []BranchRef
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// "2024-05-01 12:00:00 +0000 origin/main" -> date parts + refname
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		refname := fields[len(fields)-1]
		dateStr := strings.Join(fields[:len(fields)-1], " ")

		base := refname
		if idx := strings.LastIndex(refname, "/"); idx >= 0 {
			base = refname[idx+1:]
		}
		if seen[base] {
			continue
		}
		seen[base] = true

		t, _ := time.Parse("2006-01-02 15:04:05 -0700", dateStr)
		refs = append(refs, BranchRef{Name: base, Date: t})
	}

	sort.SliceStable(refs, func(i, j int) bool {
		if !refs[i].Date.Equal(refs[j].Date) {
			return refs[i].Date.After(refs[j].Date)
		}
		return refs[i].Name < refs[j].Name
	})
	return refs, nil
}

// ResolveTargetBranch implements spec §4.10's exact -> case-insensitive ->
// substring match cascade over refs. Multiple substring matches are
// reported via matches so the caller can prompt.
func ResolveTargetBranch(refs []BranchRef, query string) (match string, multipleMatches []string) {
	for _, r := range refs {
		if r.Name == query {
			return r.Name, nil
		}
	}
	lowerQuery := strings.ToLower(query)
	for _, r := range refs {
		if strings.ToLower(r.Name) == lowerQuery {
			return r.Name, nil
		}
	}
	var substr []string
	for _, r := range refs {
		if strings.Contains(strings.ToLower(r.Name), lowerQuery) {
			substr = append(substr, r.Name)
		}
	}
	if len(substr) == 1 {
		return substr[0], nil
	}
	return "", substr
}

// AheadBehind parses the bracketed ahead/behind segment out of `git status
// -sb`'s first line (e.g. "## main...origin/main [ahead 2, behind 1]").
func AheadBehind(repoPath string) (ahead, behind int, err error) {
	out, statusErr := run(repoPath, "status", "-sb")
	if statusErr != nil {
		return 0, 0, statusErr
	}
	firstLine := out
	if idx := strings.IndexByte(out, '\n'); idx >= 0 {
		firstLine = out[:idx]
	}

	start := strings.IndexByte(firstLine, '[')
	end := strings.IndexByte(firstLine, ']')
	if start < 0 || end < 0 || end < start {
		return 0, 0, nil
	}
	segment := firstLine[start+1 : end]
	for _, part := range strings.Split(segment, ",") {
		part = strings.TrimSpace(part)
		fields := strings.Fields(part)
		if len(fields) != 2 {
			continue
		}
		n, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			continue
		}
		switch fields[0] {
		case "ahead":
			ahead = n
		case "behind":
			behind = n
		}
	}
	return ahead, behind, nil
}

func run(repoPath string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.Command("git", fullArgs...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return "", &deerrors.SubprocessError{
			Command:  "git " + strings.Join(fullArgs, " "),
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
		}
	}
	return strings.TrimSpace(out.String()), nil
}

func runCmd(cmd *exec.Cmd) error {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return &deerrors.SubprocessError{
			Command:  strings.Join(cmd.Args, " "),
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
		}
	}
	return nil
}
