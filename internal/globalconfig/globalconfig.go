// Package globalconfig loads and saves the single per-user config.toml
// tracking the active workspace (spec §4.4). Grounded on the teacher's
// internal/config.Load/DefaultConfig pattern: a missing file means
// all-defaults, never an error.
package globalconfig

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/tormodhaugland/de/internal/paths"
	"github.com/tormodhaugland/de/internal/slug"
)

// Active holds the active.* table.
type Active struct {
	Workspace *slug.Slug `toml:"workspace,omitempty"`
}

// Config is the in-memory GlobalConfig.
type Config struct {
	Active Active `toml:"active"`
}

// Load reads the global config.toml. A missing file is equivalent to
// all-default, not an error.
func Load() (*Config, error) {
	path, err := paths.GlobalConfigFile()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// Save persists cfg to config.toml.
func (c *Config) Save() error {
	path, err := paths.GlobalConfigFile()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".config.toml.tmp-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	defer os.Remove(tmpName)

	enc := toml.NewEncoder(f)
	enc.Indent = "  "
	if err := enc.Encode(c); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// MutatePersisted loads the config, applies f, and saves the result back
// — a read-modify-write convenience for callers that only need to flip one
// field (spec §4.4).
func MutatePersisted(f func(*Config)) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	f(cfg)
	return cfg.Save()
}

// GetActiveWorkspace returns the currently active workspace, if any.
func GetActiveWorkspace() (*slug.Slug, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return cfg.Active.Workspace, nil
}

// SetActiveWorkspace persists name as the active workspace, or clears it
// when name is nil.
func SetActiveWorkspace(name *slug.Slug) error {
	return MutatePersisted(func(c *Config) {
		c.Active.Workspace = name
	})
}
