// Package paths resolves de's per-user config root, the same way the
// teacher's internal/config resolved co's: os.UserConfigDir joined with
// the application name, with a DE_CONFIG_DIR override for tests and
// container setups that cannot write to the platform default.
package paths

import (
	"os"
	"path/filepath"
)

const appName = "de"

// ConfigDir returns the per-user config root, creating it if missing.
func ConfigDir() (string, error) {
	if override := os.Getenv("DE_CONFIG_DIR"); override != "" {
		if err := os.MkdirAll(override, 0o755); err != nil {
			return "", err
		}
		return override, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// GlobalConfigFile returns the path to the global config.toml.
func GlobalConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// WorkspacesDir returns the directory holding one TOML file per workspace.
func WorkspacesDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	wsDir := filepath.Join(dir, "workspaces")
	if err := os.MkdirAll(wsDir, 0o755); err != nil {
		return "", err
	}
	return wsDir, nil
}

// WorkspaceFile returns the path a workspace named name would be stored at.
func WorkspaceFile(name string) (string, error) {
	dir, err := WorkspacesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".toml"), nil
}
