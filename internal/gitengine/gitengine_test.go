package gitengine

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/de/internal/slug"
)

type fakePrompter struct {
	dirty    DirtyChoice
	unpushed UnpushedChoice
}

func (f fakePrompter) ResolveDirty(slug.Slug) DirtyChoice        { return f.dirty }
func (f fakePrompter) ResolveUnpushed(slug.Slug, int) UnpushedChoice { return f.unpushed }

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoErrorf(t, err, "git %v: %s", args, out)
	return string(out)
}

func bareRemoteClone(t *testing.T) (remote, clone string) {
	t.Helper()
	remote = t.TempDir()
	runGit(t, remote, "init", "-q", "--bare")

	seed := t.TempDir()
	runGit(t, seed, "init", "-q")
	runGit(t, seed, "config", "user.email", "test@example.com")
	runGit(t, seed, "config", "user.name", "Test")
	require.NoError(t, os.WriteFile(filepath.Join(seed, "a.txt"), []byte("one"), 0o644))
	runGit(t, seed, "add", ".")
	runGit(t, seed, "commit", "-q", "-m", "first")
	runGit(t, seed, "branch", "-M", "main")
	runGit(t, seed, "remote", "add", "origin", remote)
	runGit(t, seed, "push", "-q", "origin", "main")

	clone = t.TempDir()
	runGit(t, clone, "clone", "-q", remote, ".")
	runGit(t, clone, "config", "user.email", "test@example.com")
	runGit(t, clone, "config", "user.name", "Test")
	return remote, clone
}

func TestSwitchCleanProjectChecksOutBranch(t *testing.T) {
	_, clone := bareRemoteClone(t)
	runGit(t, clone, "checkout", "-b", "feature")
	runGit(t, clone, "checkout", "main")

	targets := []Target{{ID: "api", Dir: clone, GitEnabled: true}}
	outcomes := Switch(targets, SwitchOptions{Query: "feature"}, fakePrompter{})

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSuccess, outcomes[0].Status)

	branch := runGit(t, clone, "rev-parse", "--abbrev-ref", "HEAD")
	assert.Contains(t, branch, "feature")
}

func TestSwitchSkipsGitDisabledProject(t *testing.T) {
	targets := []Target{{ID: "api", Dir: "/nonexistent", GitEnabled: false}}
	outcomes := Switch(targets, SwitchOptions{}, fakePrompter{})
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSkipped, outcomes[0].Status)
}

func TestSwitchDirtyStashPolicyStashesAndPopsBack(t *testing.T) {
	_, clone := bareRemoteClone(t)
	runGit(t, clone, "checkout", "-b", "feature")
	runGit(t, clone, "checkout", "main")
	require.NoError(t, os.WriteFile(filepath.Join(clone, "a.txt"), []byte("dirty"), 0o644))

	targets := []Target{{ID: "api", Dir: clone, GitEnabled: true}}
	outcomes := Switch(targets, SwitchOptions{Query: "feature", OnDirty: OnDirtyStash}, fakePrompter{})

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSuccess, outcomes[0].Status)
}

func TestBaseResetSkipsGitDisabledProject(t *testing.T) {
	targets := []Target{{ID: "api", Dir: "/nonexistent", GitEnabled: false}}
	outcomes := BaseReset(targets, BaseResetOptions{}, fakePrompter{})
	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSkipped, outcomes[0].Status)
}

func TestBaseResetCleanProjectResetsToOrigin(t *testing.T) {
	_, clone := bareRemoteClone(t)
	require.NoError(t, os.WriteFile(filepath.Join(clone, "a.txt"), []byte("local edit, uncommitted"), 0o644))
	runGit(t, clone, "add", ".")
	runGit(t, clone, "commit", "-q", "-m", "local only")

	targets := []Target{{ID: "api", Dir: clone, GitEnabled: true}}
	outcomes := BaseReset(targets, BaseResetOptions{BaseBranch: "main", OnDirty: OnDirtyForce}, fakePrompter{unpushed: UnpushedProceed})

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSuccess, outcomes[0].Status)

	content, err := os.ReadFile(filepath.Join(clone, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(content))
}
