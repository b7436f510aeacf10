package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/de/internal/slug"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, Filename), []byte(content), 0o644))
}

func TestLoadInfersNameWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
workspace = "demo"
`)
	m, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, InferName(dir), m.Project.Name)
	assert.True(t, m.Git.Enabled)
	assert.Equal(t, "origin", m.Git.DefaultRemote)
}

func TestLoadTasksStringAndTable(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "api"
workspace = "demo"

[tasks]
build = "make build"

[tasks.migrate]
service = "db"
command = "alembic upgrade head"
`)
	m, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, m.Tasks, 2)

	build, ok := m.Tasks["build"]
	require.True(t, ok)
	assert.Equal(t, TaskRaw, build.Kind)
	assert.Equal(t, "make build", build.Command)

	migrate, ok := m.Tasks["migrate"]
	require.True(t, ok)
	assert.Equal(t, TaskCompose, migrate.Kind)
	assert.Equal(t, "db", migrate.Service)
	assert.Equal(t, "alembic upgrade head", migrate.Command)
}

func TestLoadOverrideLayerWins(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "api"
workspace = "demo"

[git]
enabled = true
default_remote = "origin"
`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".de"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".de", "config.toml"), []byte(`
[git]
enabled = false
default_remote = "upstream"
`), 0o644))

	m, err := Load(dir)
	require.NoError(t, err)
	assert.False(t, m.Git.Enabled)
	assert.Equal(t, "upstream", m.Git.DefaultRemote)
}

func TestLoadEnvOverrideWins(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "api"
workspace = "demo"
`)
	t.Setenv("DE_PROJECT_WORKSPACE", "other")
	m, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "other", m.Project.Workspace.String())
}

func TestLoadRejectsMalformedTask(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "api"
workspace = "demo"

[tasks]
build = 5
`)
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestSaveRoundTripsTasks(t *testing.T) {
	dir := t.TempDir()
	m := &ProjectManifest{
		Project: Project{Name: "api", Workspace: "demo"},
		Git:     DefaultGit(),
		Tasks: map[slug.Slug]Task{
			"build":   {Kind: TaskRaw, Command: "make build"},
			"migrate": {Kind: TaskCompose, Service: "db", Command: "alembic upgrade head"},
		},
	}
	require.NoError(t, m.Save(dir))

	reloaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, m.Tasks["build"], reloaded.Tasks["build"])
	assert.Equal(t, m.Tasks["migrate"], reloaded.Tasks["migrate"])
}

func TestComposePathPrefersManifestOverride(t *testing.T) {
	dir := t.TempDir()
	m := &ProjectManifest{Project: Project{DockerCompose: "deploy/compose.yml"}}
	assert.Equal(t, filepath.Join(dir, "deploy/compose.yml"), m.ComposePath(dir))

	m2 := &ProjectManifest{}
	assert.Equal(t, filepath.Join(dir, "docker-compose.yml"), m2.ComposePath(dir))
}

func TestResolvedStepOrderMatchesDeclarationOrder(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "api"
workspace = "demo"

[setup.steps.migrate]
command = [{ command = "alembic upgrade head" }]

[setup.steps.clone]
command = [{ command = "git clone" }]

[setup.steps.build]
command = [{ command = "make build" }]
`)
	m, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, m.Setup)

	assert.Equal(t, []string{"migrate", "clone", "build"}, m.Setup.ResolvedStepOrder(""))
}

func TestResolvedStepOrderAppendsProfileOnlySteps(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "api"
workspace = "demo"

[setup.steps.clone]
command = [{ command = "git clone" }]

[setup.steps.build]
command = [{ command = "make build" }]

[setup.profiles.ci.steps.build]
command = [{ command = "make build-ci" }]

[setup.profiles.ci.steps.lint]
command = [{ command = "make lint" }]
`)
	m, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, m.Setup)

	// "build" keeps its base position even though the profile overrides
	// its command; "lint" is profile-only and lands after the base steps.
	assert.Equal(t, []string{"clone", "build", "lint"}, m.Setup.ResolvedStepOrder("ci"))
}
