package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/de/internal/globalconfig"
	"github.com/tormodhaugland/de/internal/slug"
	"github.com/tormodhaugland/de/internal/workspace"
)

func withConfigDir(t *testing.T) {
	t.Helper()
	t.Setenv("DE_CONFIG_DIR", t.TempDir())
}

func TestDispatchNoActiveWorkspace(t *testing.T) {
	withConfigDir(t)
	outcome, err := Dispatch(context.Background(), "anything", nil, "")
	assert.NoError(t, err)
	assert.Equal(t, OutcomeNoActiveWorkspace, outcome)
}

func TestDispatchProjectHeadRunsTask(t *testing.T) {
	withConfigDir(t)

	root := t.TempDir()
	apiDir := filepath.Join(root, "api")
	require.NoError(t, os.MkdirAll(apiDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(apiDir, "de.toml"), []byte(`
[project]
name = "api"
workspace = "demo"

[tasks]
touch = "touch marker.txt"
`), 0o644))

	ws := workspace.New("demo")
	require.NoError(t, ws.AddProject("api", apiDir))
	require.NoError(t, ws.Save())

	name := slug.Slug("demo")
	require.NoError(t, globalconfig.SetActiveWorkspace(&name))

	outcome, err := Dispatch(context.Background(), "api", []string{"touch"}, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRan, outcome)

	_, statErr := os.Stat(filepath.Join(apiDir, "marker.txt"))
	assert.NoError(t, statErr)
}

func TestDispatchNotFound(t *testing.T) {
	withConfigDir(t)
	ws := workspace.New("demo")
	require.NoError(t, ws.Save())
	name := slug.Slug("demo")
	require.NoError(t, globalconfig.SetActiveWorkspace(&name))

	outcome, err := Dispatch(context.Background(), "ghost", nil, "")
	assert.Error(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)
}
