package gitrepo

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T, dir string) {
	t.Helper()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test")
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoErrorf(t, err, "git %v: %s", args, out)
	return string(out)
}

func writeAndCommit(t *testing.T, dir, file, content, msg string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", msg)
}

func TestIsRepoAndGetInfo(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsRepo(dir))

	initRepo(t, dir)
	writeAndCommit(t, dir, "a.txt", "one", "first")

	assert.True(t, IsRepo(dir))

	info, err := GetInfo(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, info.Head)
	assert.False(t, info.Dirty)
	assert.WithinDuration(t, time.Now(), info.LastCommit, time.Hour)
}

func TestIsDirtyDetectsUnstagedChange(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	writeAndCommit(t, dir, "a.txt", "one", "first")

	assert.False(t, IsDirty(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("changed"), 0o644))
	assert.True(t, IsDirty(dir))
}

func TestCheckoutAndLocalBranchExists(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	writeAndCommit(t, dir, "a.txt", "one", "first")

	assert.False(t, LocalBranchExists(dir, "feature"))
	runGit(t, dir, "branch", "feature")
	assert.True(t, LocalBranchExists(dir, "feature"))

	require.NoError(t, Checkout(dir, "feature", false))
	branch := runGit(t, dir, "rev-parse", "--abbrev-ref", "HEAD")
	assert.Contains(t, branch, "feature")
}

func TestResolveTargetBranchCascade(t *testing.T) {
	refs := []BranchRef{{Name: "main"}, {Name: "feature-login"}, {Name: "feature-logout"}}

	match, multi := ResolveTargetBranch(refs, "main")
	assert.Equal(t, "main", match)
	assert.Empty(t, multi)

	match, multi = ResolveTargetBranch(refs, "Main")
	assert.Equal(t, "main", match)
	assert.Empty(t, multi)

	match, multi = ResolveTargetBranch(refs, "login")
	assert.Equal(t, "feature-login", match)
	assert.Empty(t, multi)

	match, multi = ResolveTargetBranch(refs, "feature")
	assert.Empty(t, match)
	assert.Len(t, multi, 2)
}

func TestAheadBehindParsesBracketSegment(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	writeAndCommit(t, dir, "a.txt", "one", "first")

	ahead, behind, err := AheadBehind(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, ahead)
	assert.Equal(t, 0, behind)
}

func TestStashPushAndPop(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)
	writeAndCommit(t, dir, "a.txt", "one", "first")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("changed"), 0o644))

	require.NoError(t, StashPushUntracked(dir))
	assert.False(t, IsDirty(dir))

	require.NoError(t, StashPop(dir))
	assert.True(t, IsDirty(dir))
}
