package task

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/de/internal/slug"
	"github.com/tormodhaugland/de/internal/workspace"
)

func setupProject(t *testing.T, root, name string, manifestBody string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "de.toml"), []byte(manifestBody), 0o644))
	return dir
}

func TestRunProjectHintRawTask(t *testing.T) {
	root := t.TempDir()
	dir := setupProject(t, root, "api", `
[project]
name = "api"
workspace = "demo"

[tasks]
touch = "touch marker.txt"
`)
	ws := workspace.New("demo")
	require.NoError(t, ws.AddProject("api", dir))

	id := slug.Slug("api")
	err := Run(context.Background(), ws, Request{
		Task:        "touch",
		ProjectHint: &id,
	})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "marker.txt"))
	assert.NoError(t, statErr)
}

func TestRunProjectHintUnknownTask(t *testing.T) {
	root := t.TempDir()
	dir := setupProject(t, root, "api", `
[project]
name = "api"
workspace = "demo"
`)
	ws := workspace.New("demo")
	require.NoError(t, ws.AddProject("api", dir))

	id := slug.Slug("api")
	err := Run(context.Background(), ws, Request{Task: "ghost", ProjectHint: &id})
	assert.Error(t, err)
}

func TestRunFallsThroughToWorkspaceTask(t *testing.T) {
	t.Setenv("DE_CONFIG_DIR", t.TempDir())
	ws := workspace.New("demo")
	require.NoError(t, ws.Save())

	wsDir, err := workspace.Dir(ws)
	require.NoError(t, err)
	ws.Tasks["touch"] = "touch marker.txt"

	runErr := Run(context.Background(), ws, Request{Task: "touch"})
	require.NoError(t, runErr)

	_, statErr := os.Stat(filepath.Join(wsDir, "marker.txt"))
	assert.NoError(t, statErr)
}

func TestRunNotFound(t *testing.T) {
	ws := workspace.New("demo")
	err := Run(context.Background(), ws, Request{Task: "ghost"})
	assert.Error(t, err)
}

func TestResolveWorkspaceNamePrecedence(t *testing.T) {
	explicit := slug.Slug("explicit")
	active := slug.Slug("active")
	current := slug.Slug("current")

	got, err := ResolveWorkspaceName(Request{WorkspaceHint: &explicit, ActiveWorkspace: &active}, &current)
	require.NoError(t, err)
	assert.Equal(t, explicit, got)

	got, err = ResolveWorkspaceName(Request{ActiveWorkspace: &active}, &current)
	require.NoError(t, err)
	assert.Equal(t, active, got)

	got, err = ResolveWorkspaceName(Request{}, &current)
	require.NoError(t, err)
	assert.Equal(t, current, got)

	_, err = ResolveWorkspaceName(Request{}, nil)
	assert.Error(t, err)
}
