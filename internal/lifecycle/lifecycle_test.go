package lifecycle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/de/internal/workspace"
)

func writeProject(t *testing.T, root, name, workspaceName string, dependsOn []string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	deps := ""
	for _, d := range dependsOn {
		deps += "\"" + d + "\", "
	}
	content := "[project]\nname = \"" + name + "\"\nworkspace = \"" + workspaceName + "\"\ndepends_on = [" + deps + "]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "de.toml"), []byte(content), 0o644))
	return dir
}

func TestSpinUpWorkspaceRespectsDependencyOrderWithoutComposeFiles(t *testing.T) {
	root := t.TempDir()
	dbDir := writeProject(t, root, "db", "demo", nil)
	apiDir := writeProject(t, root, "api", "demo", []string{"db"})

	ws := workspace.New("demo")
	require.NoError(t, ws.AddProject("db", dbDir))
	require.NoError(t, ws.AddProject("api", apiDir))

	outcomes, err := SpinUpWorkspace(context.Background(), ws)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	// No docker-compose.yml exists in either dir, so each outcome is a
	// no-op success (applied=false), but ordering must still be db, api.
	assert.Equal(t, "db", outcomes[0].Project.String())
	assert.Equal(t, "api", outcomes[1].Project.String())
	for _, o := range outcomes {
		assert.NoError(t, o.Err)
		assert.False(t, o.Applied)
	}
}

func TestSpinUpProjectAndDependenciesFiltersClosure(t *testing.T) {
	root := t.TempDir()
	dbDir := writeProject(t, root, "db", "demo", nil)
	apiDir := writeProject(t, root, "api", "demo", []string{"db"})
	webDir := writeProject(t, root, "web", "demo", []string{"api"})

	ws := workspace.New("demo")
	require.NoError(t, ws.AddProject("db", dbDir))
	require.NoError(t, ws.AddProject("api", apiDir))
	require.NoError(t, ws.AddProject("web", webDir))

	outcomes, err := SpinUpProjectAndDependencies(context.Background(), ws, "api")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "db", outcomes[0].Project.String())
	assert.Equal(t, "api", outcomes[1].Project.String())
}

func TestSpinUpWorkspaceDetectsCycle(t *testing.T) {
	root := t.TempDir()
	aDir := writeProject(t, root, "a", "demo", []string{"b"})
	bDir := writeProject(t, root, "b", "demo", []string{"a"})

	ws := workspace.New("demo")
	require.NoError(t, ws.AddProject("a", aDir))
	require.NoError(t, ws.AddProject("b", bDir))

	_, err := SpinUpWorkspace(context.Background(), ws)
	assert.Error(t, err)
}
