package manifest

import (
	"sort"

	"github.com/BurntSushi/toml"
)

// GitConfig is the setup.git table: the upstream repository a snapshot's
// apply phase clones for this project.
type GitConfig struct {
	URL    string `toml:"url"`
	Branch string `toml:"branch,omitempty"`
}

// GitOverride is a profile's partial override of the base GitConfig: URL
// replaces when set, Branch replaces when set else the base is kept.
type GitOverride struct {
	URL    string `toml:"url,omitempty"`
	Branch string `toml:"branch,omitempty"`
}

// ApplyCommand is one command invocation used by Basic/Complex steps,
// optionally fed a file's contents on stdin.
type ApplyCommand struct {
	Command string      `toml:"command"`
	Stdin   *StdinFile  `toml:"stdin,omitempty"`
}

// StdinFile names a snapshot-relative file to route to an ApplyCommand's
// stdin.
type StdinFile struct {
	File string `toml:"file"`
}

// ExportCommand produces a file captured into the snapshot. When Stdout
// names a file, the command's stdout is redirected there; otherwise stdout
// is discarded.
type ExportCommand struct {
	Command string         `toml:"command"`
	Stdout  *ExportToFile  `toml:"stdout,omitempty"`
}

// ExportToFile names the snapshot-relative pipe file an ExportCommand's
// stdout is written to.
type ExportToFile struct {
	File string `toml:"file"`
}

// StepKind distinguishes the three Step variants.
type StepKind int

const (
	StepCopyFiles StepKind = iota
	StepBasic
	StepComplex
)

// Step is one named unit of setup/snapshot work (spec §4.12). Dispatch
// between its three kinds is by field presence, mirroring how Task's
// Compose/Raw variants are told apart, rather than a second
// Primitive-decode pass: CopyFiles-vs-command steps differ only in which
// optional fields are populated, not in TOML value type.
type Step struct {
	Name     string `toml:"-"`
	Service  string `toml:"service,omitempty"`
	Optional bool   `toml:"optional,omitempty"`
	SkipIf   string `toml:"skip_if,omitempty"`

	Kind StepKind `toml:"-"`

	// StepCopyFiles
	Source      string `toml:"source,omitempty"`
	Destination string `toml:"destination,omitempty"`
	Overwrite   bool   `toml:"overwrite,omitempty"`

	// StepBasic / StepComplex
	Command []ApplyCommand  `toml:"command,omitempty"`
	Apply   []ApplyCommand  `toml:"apply,omitempty"`
	Export  []ExportCommand `toml:"export,omitempty"`
	Env     map[string]string `toml:"env,omitempty"`
}

// Classify sets Kind from whichever fields are populated; ResolvedSteps
// applies it, since decoded Step values arrive with Kind at its zero
// value.
func (s *Step) Classify() {
	switch {
	case s.Source != "" || s.Destination != "":
		s.Kind = StepCopyFiles
	case s.Apply != nil || s.Export != nil:
		s.Kind = StepComplex
	default:
		s.Kind = StepBasic
	}
}

// Profile is a named override layer: its own git override and a steps map
// merged on top of the base steps (same key replaces).
type Profile struct {
	Git   *GitOverride    `toml:"git,omitempty"`
	Steps map[string]Step `toml:"steps,omitempty"`

	// stepOrder holds Steps' keys in the order they appear in the TOML
	// document (§4.12), populated by ApplyStepOrder right after decoding
	// since map iteration order can't carry this.
	stepOrder []string `toml:"-"`
}

// SetupConfig is the ProjectManifest.setup table.
type SetupConfig struct {
	Git      GitConfig          `toml:"git,omitempty"`
	Steps    map[string]Step    `toml:"steps,omitempty"`
	Profiles map[string]Profile `toml:"profiles,omitempty"`

	// stepOrder holds Steps' keys in declaration order; see Profile.stepOrder.
	stepOrder []string `toml:"-"`
}

// ApplyStepOrder records the document order of setup.steps.* and every
// setup.profiles.*.steps.* table from meta.Keys(), so ResolvedStepOrder can
// honor §4.12/§5's "steps run in the order they appear in the merged
// profile mapping" guarantee instead of Go's unordered map iteration.
// Called once per decoded layer (primary, then override) right after
// toml.DecodeFile; a later layer's keys are appended after the existing
// order so a step a layer adds for the first time still lands at the end
// in that layer's own order, matching how the layer's table values
// overlay the earlier ones without reordering what's already there.
func (c *SetupConfig) ApplyStepOrder(meta toml.MetaData) {
	if c == nil {
		return
	}
	for _, key := range meta.Keys() {
		switch {
		case len(key) == 3 && key[0] == "setup" && key[1] == "steps":
			c.stepOrder = appendOnce(c.stepOrder, key[2])

		case len(key) == 5 && key[0] == "setup" && key[1] == "profiles" && key[3] == "steps":
			profileName := key[2]
			p := c.Profiles[profileName]
			p.stepOrder = appendOnce(p.stepOrder, key[4])
			c.Profiles[profileName] = p
		}
	}
}

func appendOnce(order []string, name string) []string {
	for _, existing := range order {
		if existing == name {
			return order
		}
	}
	return append(order, name)
}

// ResolvedSteps returns the base steps overlaid with profile's steps (same
// key overrides), per spec §4.12's steps(profile) operation. An empty or
// unknown profile name returns the base steps.
func (c *SetupConfig) ResolvedSteps(profile string) map[string]Step {
	merged := make(map[string]Step, len(c.Steps))
	for k, v := range c.Steps {
		v.Name = k
		v.Classify()
		merged[k] = v
	}
	if profile == "" {
		return merged
	}
	p, ok := c.Profiles[profile]
	if !ok {
		return merged
	}
	for k, v := range p.Steps {
		v.Name = k
		v.Classify()
		merged[k] = v
	}
	return merged
}

// ResolvedStepOrder returns the names ResolvedSteps(profile) would produce,
// in the order they appear in the merged profile mapping: base steps in
// their declared document order, followed by any profile-only steps in the
// profile's own declared order. Any step present in the merged map but
// missing from stepOrder (shouldn't happen outside hand-built test fixtures
// that skip ApplyStepOrder) is appended last in sorted order so the result
// is still deterministic.
func (c *SetupConfig) ResolvedStepOrder(profile string) []string {
	merged := c.ResolvedSteps(profile)
	order := make([]string, 0, len(merged))
	seen := make(map[string]bool, len(merged))

	for _, name := range c.stepOrder {
		if _, ok := merged[name]; ok && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}
	if profile != "" {
		if p, ok := c.Profiles[profile]; ok {
			for _, name := range p.stepOrder {
				if _, ok := merged[name]; ok && !seen[name] {
					order = append(order, name)
					seen[name] = true
				}
			}
		}
	}

	if len(order) < len(merged) {
		var rest []string
		for name := range merged {
			if !seen[name] {
				rest = append(rest, name)
			}
		}
		sort.Strings(rest)
		order = append(order, rest...)
	}
	return order
}

// ResolvedGit returns the base GitConfig with profile's override applied,
// per spec §4.12's git(profile) operation.
func (c *SetupConfig) ResolvedGit(profile string) GitConfig {
	base := c.Git
	if profile == "" {
		return base
	}
	p, ok := c.Profiles[profile]
	if !ok || p.Git == nil {
		return base
	}
	if p.Git.URL != "" {
		base.URL = p.Git.URL
	}
	if p.Git.Branch != "" {
		base.Branch = p.Git.Branch
	}
	return base
}
