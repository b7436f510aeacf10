// Package manifest loads and saves the per-project de.toml manifest,
// including its layered override/env merge and the Task tagged union.
// Grounded on the teacher's internal/config.Load layering (primary file,
// then an override, then defaults) generalized to the three-layer merge
// spec requires, and on the TOML-Primitive technique (see DESIGN.md) for
// representing a TOML value that is either a bare string or a table.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/tormodhaugland/de/internal/deerrors"
	"github.com/tormodhaugland/de/internal/fsutil"
	"github.com/tormodhaugland/de/internal/slug"
)

// Project holds the project.* table of a manifest.
type Project struct {
	Name          slug.Slug   `toml:"name" env:"NAME"`
	Workspace     slug.Slug   `toml:"workspace" env:"WORKSPACE"`
	DockerCompose string      `toml:"docker_compose,omitempty" env:"DOCKER_COMPOSE"`
	DependsOn     []slug.Slug `toml:"depends_on,omitempty" env:"DEPENDS_ON"`
}

// Git holds the git.* table of a manifest.
type Git struct {
	Enabled       bool   `toml:"enabled" env:"ENABLED"`
	DefaultRemote string `toml:"default_remote" env:"DEFAULT_REMOTE"`
}

// DefaultGit returns the manifest defaults (git.enabled = true,
// git.default_remote = "origin") applied before any layer is merged.
func DefaultGit() Git {
	return Git{Enabled: true, DefaultRemote: "origin"}
}

// TaskKind distinguishes the two Task variants.
type TaskKind int

const (
	// TaskRaw runs Command as a shell-split argv in the project directory.
	TaskRaw TaskKind = iota
	// TaskCompose runs Command inside a docker-compose service.
	TaskCompose
)

// Task is the Compose{service, command} | Raw(string | {command}) tagged
// union from spec §3. It implements toml.Unmarshaler-adjacent behavior via
// the manifest's own Primitive double-decode pass in decodeTasks, since
// BurntSushi/toml only supports custom unmarshaling for TextUnmarshaler
// leaf values, not for values whose TOML shape varies between a string and
// a table.
type Task struct {
	Kind    TaskKind
	Service string // set when Kind == TaskCompose
	Command string
}

// rawComposeTask is the table shape of a Task when it isn't a bare string.
type rawComposeTask struct {
	Service string `toml:"service"`
	Command string `toml:"command"`
}

// ProjectManifest is the fully merged, in-memory form of de.toml plus its
// override and environment layers.
type ProjectManifest struct {
	Project Project         `toml:"project" envPrefix:"PROJECT_"`
	Git     Git             `toml:"git" envPrefix:"GIT_"`
	Tasks   map[slug.Slug]Task `toml:"-"`
	Setup   *SetupConfig    `toml:"setup,omitempty"`

	// rawTasks holds the task table entries exactly as decoded. Save does
	// not read it; it encodes tasks from Tasks.
	rawTasks map[string]toml.Primitive `toml:"-"`
	meta     toml.MetaData
}

// manifestDoc is the literal TOML document shape, used for both decoding
// (tasks held back as toml.Primitive for the string-or-table dispatch) and
// encoding (tasks expanded back into their concrete shape just before
// writing).
type manifestDoc struct {
	Project Project                    `toml:"project"`
	Git     Git                        `toml:"git"`
	Tasks   map[string]toml.Primitive  `toml:"tasks,omitempty"`
	Setup   *SetupConfig               `toml:"setup,omitempty"`
}

// encodeDoc is manifestDoc's save-time twin: Tasks is a plain interface
// map so each Task can marshal as either a bare string or a table.
type encodeDoc struct {
	Project Project     `toml:"project"`
	Git     Git         `toml:"git"`
	Tasks   map[string]any `toml:"tasks,omitempty"`
	Setup   *SetupConfig   `toml:"setup,omitempty"`
}

// Filename is the primary manifest file name within a project directory.
const Filename = "de.toml"

// OverridePath is the optional override file, relative to the project dir.
var OverridePath = filepath.Join(".de", "config.toml")

// EnvPrefix is the prefix (with trailing underscore) environment overrides
// use, per spec §3.
const EnvPrefix = "DE_"

// InferName derives a project name from dir's base name via slug.Sanitize,
// falling back to "project" if nothing usable remains.
func InferName(dir string) slug.Slug {
	base := filepath.Base(filepath.Clean(dir))
	if s := slug.Sanitize(base); s != nil {
		return *s
	}
	return slug.Slug("project")
}

// Load performs the full layered merge described in spec §3: primary
// de.toml, optional .de/config.toml override, then DE_-prefixed
// environment variables, with a sibling .env loaded into the process
// environment first so its variables feed the DE_ layer. TOML values are
// not ${VAR}-expanded here.
func Load(dir string) (*ProjectManifest, error) {
	envFile := filepath.Join(dir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("manifest: loading %s: %w", envFile, err)
		}
	}

	doc := manifestDoc{Git: DefaultGit()}
	primaryPath := filepath.Join(dir, Filename)
	if _, statErr := os.Stat(primaryPath); os.IsNotExist(statErr) {
		return nil, &deerrors.NotFoundError{Kind: "manifest", Name: primaryPath}
	}
	meta, err := decodeFile(primaryPath, &doc)
	if err != nil {
		return nil, err
	}
	doc.Setup.ApplyStepOrder(meta)

	overridePath := filepath.Join(dir, OverridePath)
	if _, statErr := os.Stat(overridePath); statErr == nil {
		overrideMeta, err := decodeFile(overridePath, &doc)
		if err != nil {
			return nil, err
		}
		doc.Setup.ApplyStepOrder(overrideMeta)
	}

	if err := env.ParseWithOptions(&doc.Project, env.Options{Prefix: EnvPrefix + "PROJECT_"}); err != nil {
		return nil, fmt.Errorf("manifest: env override: %w", err)
	}
	if err := env.ParseWithOptions(&doc.Git, env.Options{Prefix: EnvPrefix + "GIT_"}); err != nil {
		return nil, fmt.Errorf("manifest: env override: %w", err)
	}

	if doc.Project.Name == "" {
		doc.Project.Name = InferName(dir)
	}

	tasks, err := decodeTasks(doc.Tasks)
	if err != nil {
		return nil, err
	}

	return &ProjectManifest{
		Project:  doc.Project,
		Git:      doc.Git,
		Tasks:    tasks,
		Setup:    doc.Setup,
		rawTasks: doc.Tasks,
		meta:     meta,
	}, nil
}

func decodeFile(path string, doc *manifestDoc) (toml.MetaData, error) {
	meta, err := toml.DecodeFile(path, doc)
	if err != nil {
		if os.IsNotExist(err) {
			return meta, nil
		}
		return meta, &deerrors.SchemaViolationError{Field: path, Message: err.Error()}
	}
	return meta, nil
}

// decodeTasks applies the Primitive double-decode: every tasks.* entry is
// first captured as a toml.Primitive, then an attempt is made to decode it
// as a bare string (Task::Raw); a failure there means it's a table, so it
// is decoded into rawComposeTask and classified by which fields are set.
func decodeTasks(raw map[string]toml.Primitive) (map[slug.Slug]Task, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[slug.Slug]Task, len(raw))
	for name, prim := range raw {
		s, err := slug.From(name)
		if err != nil {
			return nil, &deerrors.SchemaViolationError{Field: "tasks." + name, Message: err.Error()}
		}

		var bare string
		if err := toml.PrimitiveDecode(prim, &bare); err == nil {
			out[s] = Task{Kind: TaskRaw, Command: bare}
			continue
		}

		var table rawComposeTask
		if err := toml.PrimitiveDecode(prim, &table); err != nil {
			return nil, &deerrors.SchemaViolationError{Field: "tasks." + name, Message: "must be a string or a {service, command} table"}
		}
		if table.Service != "" {
			out[s] = Task{Kind: TaskCompose, Service: table.Service, Command: table.Command}
		} else {
			out[s] = Task{Kind: TaskRaw, Command: table.Command}
		}
	}
	return out, nil
}

// Save writes the manifest back to dir/de.toml as pretty-printed TOML.
// Per §4.2's stated choice (see SPEC_FULL.md §5), unknown top-level keys
// encountered at load time are not round-tripped; Save only ever writes
// the fields ProjectManifest models. Every task is re-encoded from the
// Tasks map: a compose task as a {service, command} table, a raw task as
// a bare string (a raw task written as a {command} table comes back as a
// bare string).
func (m *ProjectManifest) Save(dir string) error {
	doc := encodeDoc{
		Project: m.Project,
		Git:     m.Git,
		Setup:   m.Setup,
	}
	if len(m.Tasks) > 0 {
		doc.Tasks = make(map[string]any, len(m.Tasks))
		for name, task := range m.Tasks {
			doc.Tasks[name.String()] = encodeTask(task)
		}
	}

	path := filepath.Join(dir, Filename)
	f, err := os.CreateTemp(dir, ".de.toml.tmp-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	defer os.Remove(tmpName)

	enc := toml.NewEncoder(f)
	enc.Indent = "  "
	if err := enc.Encode(doc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func encodeTask(t Task) any {
	if t.Kind == TaskCompose {
		return rawComposeTask{Service: t.Service, Command: t.Command}
	}
	return t.Command
}

// SortedTaskNames returns the manifest's task names in sorted order, for
// deterministic `task list` output.
func (m *ProjectManifest) SortedTaskNames() []slug.Slug {
	names := make([]slug.Slug, 0, len(m.Tasks))
	for name := range m.Tasks {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return slug.Less(names[i], names[j]) })
	return names
}

// ComposePath resolves the project's docker-compose file: the
// manifest-configured override if set (resolved relative to dir), else the
// conventional docker-compose.yml sibling. It does not check existence;
// callers that need "missing file -> ok(false)" semantics (spec §4.7) stat
// the returned path themselves.
func (m *ProjectManifest) ComposePath(dir string) string {
	if m.Project.DockerCompose != "" {
		if filepath.IsAbs(m.Project.DockerCompose) {
			return m.Project.DockerCompose
		}
		return filepath.Join(dir, m.Project.DockerCompose)
	}
	return filepath.Join(dir, "docker-compose.yml")
}

// EnsureProjectDir makes sure dir exists before a manifest write.
func EnsureProjectDir(dir string) error {
	return fsutil.EnsureDir(dir)
}
