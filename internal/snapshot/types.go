// Package snapshot implements the setup/snapshot engine (spec §4.12):
// capturing a workspace's projects into a reproducible zip bundle and
// later applying that bundle to materialize fresh checkouts. Adapted from
// the teacher's internal/archive Options/Result temp-dir pipeline shape,
// rebuilt around archive/zip (stdlib; see DESIGN.md for why no ecosystem
// zip library was wired here) instead of the teacher's tar.gz.
package snapshot

import (
	"time"

	"github.com/tormodhaugland/de/internal/manifest"
)

// GitRef is the manifest.json form of a project's setup.git (spec §3).
type GitRef struct {
	URL    string `json:"url"`
	Branch string `json:"branch,omitempty"`
}

// StepRecord is the manifest.json form of one resolved, env-substituted
// setup step (spec §3's ProjectSnapshotStep).
type StepRecord struct {
	Name    string                  `json:"name"`
	Kind    string                  `json:"kind"` // "copy_files" | "basic" | "complex"
	Source  string                  `json:"source,omitempty"`
	Dest    string                  `json:"destination,omitempty"`
	Overwrite bool                  `json:"overwrite,omitempty"`
	Command []manifest.ApplyCommand `json:"command,omitempty"`
	Apply   []manifest.ApplyCommand `json:"apply,omitempty"`
}

// ProjectSnapshot is one project's captured state.
type ProjectSnapshot struct {
	Git   GitRef       `json:"git"`
	Steps []StepRecord `json:"steps"`
	Files []string     `json:"files,omitempty"`
}

// Manifest is the on-disk manifest.json at a snapshot's root (spec §3).
type Manifest struct {
	WorkspaceName string                     `json:"workspace_name"`
	Projects      map[string]ProjectSnapshot `json:"projects"`
	Checksum      string                     `json:"checksum,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
}
