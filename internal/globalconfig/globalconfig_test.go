package globalconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/de/internal/slug"
)

func withConfigDir(t *testing.T) {
	t.Helper()
	t.Setenv("DE_CONFIG_DIR", t.TempDir())
}

func TestLoadMissingFileIsAllDefault(t *testing.T) {
	withConfigDir(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Active.Workspace)
}

func TestSetActiveWorkspaceRoundTrip(t *testing.T) {
	withConfigDir(t)
	ws := slug.Slug("demo")
	require.NoError(t, SetActiveWorkspace(&ws))

	got, err := GetActiveWorkspace()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ws, *got)
}

func TestSetActiveWorkspaceNilClears(t *testing.T) {
	withConfigDir(t)
	ws := slug.Slug("demo")
	require.NoError(t, SetActiveWorkspace(&ws))
	require.NoError(t, SetActiveWorkspace(nil))

	got, err := GetActiveWorkspace()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMutatePersisted(t *testing.T) {
	withConfigDir(t)
	ws := slug.Slug("one")
	require.NoError(t, MutatePersisted(func(c *Config) {
		c.Active.Workspace = &ws
	}))

	got, err := GetActiveWorkspace()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ws, *got)
}
