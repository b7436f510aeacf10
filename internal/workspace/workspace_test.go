package workspace

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/de/internal/slug"
)

func withConfigDir(t *testing.T) {
	t.Helper()
	t.Setenv("DE_CONFIG_DIR", t.TempDir())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	withConfigDir(t)

	cfg := New("demo")
	require.NoError(t, cfg.AddProject("api", "/repos/api"))
	require.NoError(t, cfg.AddProject("web", "/repos/web"))
	cfg.Tasks["lint"] = "make lint"
	branch := "main"
	cfg.DefaultBranch = &branch

	require.NoError(t, cfg.Save())

	reloaded, err := LoadFromName("demo")
	require.NoError(t, err)
	assert.Equal(t, cfg.Name, reloaded.Name)
	assert.Equal(t, cfg.Projects, reloaded.Projects)
	assert.Equal(t, cfg.Tasks, reloaded.Tasks)
	require.NotNil(t, reloaded.DefaultBranch)
	assert.Equal(t, "main", *reloaded.DefaultBranch)
}

func TestLoadMissingReturnsNotFound(t *testing.T) {
	withConfigDir(t)
	_, err := LoadFromName("ghost")
	require.Error(t, err)
}

func TestAddProjectIdempotentSameDir(t *testing.T) {
	cfg := New("demo")
	require.NoError(t, cfg.AddProject("api", "/repos/api"))
	require.NoError(t, cfg.AddProject("api", "/repos/api"))
	assert.Len(t, cfg.Projects, 1)
}

func TestAddProjectConflictDifferentDir(t *testing.T) {
	cfg := New("demo")
	require.NoError(t, cfg.AddProject("api", "/repos/api"))
	err := cfg.AddProject("api", "/repos/api-v2")
	assert.Error(t, err)
	assert.Equal(t, "/repos/api", cfg.Projects["api"].Dir)
}

func TestRemoveProjectUnconditional(t *testing.T) {
	cfg := New("demo")
	require.NoError(t, cfg.AddProject("api", "/repos/api"))
	cfg.RemoveProject("api")
	cfg.RemoveProject("api")
	assert.Empty(t, cfg.Projects)
}

func TestSortedProjectIDs(t *testing.T) {
	cfg := New("demo")
	for _, id := range []slug.Slug{"web", "api", "cache"} {
		require.NoError(t, cfg.AddProject(id, "/repos/"+id.String()))
	}
	assert.Equal(t, []slug.Slug{"api", "cache", "web"}, cfg.SortedProjectIDs())
}

func TestLoadFromPathRejectsNameMismatch(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/demo-renamed.toml"

	cfg := New("demo")
	require.NoError(t, os.WriteFile(path, []byte("name = \"demo\"\n"), 0o644))

	_, err := LoadFromPath(path)
	assert.Error(t, err)
	_ = cfg
}
