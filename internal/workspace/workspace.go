// Package workspace loads and saves the per-workspace TOML file living
// under the user's config root, and implements its add/remove project
// invariants (spec §4.3). Grounded on the teacher's internal/workspace
// save/load shape, adapted from its owner--project JSON model to de's
// TOML WorkspaceConfig schema.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/tormodhaugland/de/internal/deerrors"
	"github.com/tormodhaugland/de/internal/fsutil"
	"github.com/tormodhaugland/de/internal/paths"
	"github.com/tormodhaugland/de/internal/slug"
)

// WorkspaceProject is one entry in a workspace's project table.
type WorkspaceProject struct {
	Dir string `toml:"dir"`
}

// Config is the in-memory WorkspaceConfig (spec §3).
type Config struct {
	Name          slug.Slug                   `toml:"name"`
	Projects      map[slug.Slug]WorkspaceProject `toml:"projects,omitempty"`
	Tasks         map[slug.Slug]string        `toml:"tasks,omitempty"`
	DefaultBranch *string                     `toml:"default_branch,omitempty"`
}

// New returns an empty Config named name.
func New(name slug.Slug) *Config {
	return &Config{
		Name:     name,
		Projects: make(map[slug.Slug]WorkspaceProject),
		Tasks:    make(map[slug.Slug]string),
	}
}

// LoadFromName loads the workspace stored at <config>/workspaces/<name>.toml.
// A missing file is reported as *deerrors.NotFoundError.
func LoadFromName(name slug.Slug) (*Config, error) {
	path, err := paths.WorkspaceFile(name.String())
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads a workspace config from an explicit file path,
// validating that the stored name matches the filename stem per spec §3's
// WorkspaceConfig invariant.
func LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &deerrors.NotFoundError{Kind: "workspace", Name: path}
		}
		return nil, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, &deerrors.SchemaViolationError{Field: path, Message: err.Error()}
	}
	if cfg.Projects == nil {
		cfg.Projects = make(map[slug.Slug]WorkspaceProject)
	}
	if cfg.Tasks == nil {
		cfg.Tasks = make(map[slug.Slug]string)
	}

	stem := filepath.Base(path)
	stem = stem[:len(stem)-len(filepath.Ext(stem))]
	if cfg.Name.String() != stem {
		return nil, &deerrors.SchemaViolationError{
			Field:   "name",
			Message: fmt.Sprintf("workspace name %q does not match filename %q", cfg.Name, stem),
		}
	}
	return &cfg, nil
}

// Save writes c to <config>/workspaces/<name>.toml, creating parent
// directories as needed.
func (c *Config) Save() error {
	path, err := paths.WorkspaceFile(c.Name.String())
	if err != nil {
		return err
	}
	if err := fsutil.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".ws.toml.tmp-*")
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

// AddProject registers id at dir. It is idempotent when (id, dir) already
// matches; if id already maps to a different dir, it fails with a
// *deerrors.ConflictError and leaves c unmodified.
func (c *Config) AddProject(id slug.Slug, dir string) error {
	if c.Projects == nil {
		c.Projects = make(map[slug.Slug]WorkspaceProject)
	}
	if existing, ok := c.Projects[id]; ok {
		if existing.Dir == dir {
			return nil
		}
		return &deerrors.ConflictError{
			ID:      id.String(),
			Message: fmt.Sprintf("already registered at %q, refusing to overwrite with %q", existing.Dir, dir),
		}
	}
	c.Projects[id] = WorkspaceProject{Dir: dir}
	return nil
}

// RemoveProject unconditionally removes id, if present.
func (c *Config) RemoveProject(id slug.Slug) {
	delete(c.Projects, id)
}

// SortedProjectIDs returns the workspace's project ids in Slug order, the
// deterministic iteration order spec §5 requires for lifecycle and
// discovery operations.
func (c *Config) SortedProjectIDs() []slug.Slug {
	ids := make([]slug.Slug, 0, len(c.Projects))
	for id := range c.Projects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return slug.Less(ids[i], ids[j]) })
	return ids
}

// Dir returns the workspace file's own parent directory (the config
// root's workspaces/ subdirectory), used as the working directory for workspace-level tasks
// (spec §4.8, "the workspace config file's parent directory").
func Dir(c *Config) (string, error) {
	path, err := paths.WorkspaceFile(c.Name.String())
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// Exists reports whether a workspace named name has a config file on disk.
func Exists(name slug.Slug) (bool, error) {
	path, err := paths.WorkspaceFile(name.String())
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
