// Package discovery implements the scan/update reconciliation component
// (spec §4.6): walking a directory tree for de.toml manifests and
// registering them into workspace configs, then later reconciling stale
// registrations against what's actually on disk.
package discovery

import (
	"github.com/tormodhaugland/de/internal/fsutil"
	"github.com/tormodhaugland/de/internal/manifest"
	"github.com/tormodhaugland/de/internal/slug"
	"github.com/tormodhaugland/de/internal/workspace"
)

// ScanResult summarizes one Scan invocation.
type ScanResult struct {
	Registered int
	Errors     []error
}

// Scan recursively walks rootDir for de.toml manifests, loading each and
// registering it into its claimed workspace (creating/loading that
// workspace's Config as needed) unless workspaceFilter is set and doesn't
// match. Per-entry errors are collected, not fatal (spec §4.6).
func Scan(rootDir string, workspaceFilter *slug.Slug) (ScanResult, error) {
	var result ScanResult
	touched := make(map[slug.Slug]*workspace.Config)

	err := fsutil.WalkForFile(rootDir, manifest.Filename, func(dir string) {
		m, err := manifest.Load(dir)
		if err != nil {
			result.Errors = append(result.Errors, err)
			return
		}
		if workspaceFilter != nil && m.Project.Workspace != *workspaceFilter {
			return
		}

		ws, ok := touched[m.Project.Workspace]
		if !ok {
			loaded, loadErr := workspace.LoadFromName(m.Project.Workspace)
			if loadErr != nil {
				loaded = workspace.New(m.Project.Workspace)
			}
			ws = loaded
			touched[m.Project.Workspace] = ws
		}

		if err := ws.AddProject(m.Project.Name, dir); err != nil {
			result.Errors = append(result.Errors, err)
			return
		}
		result.Registered++
	})
	if err != nil {
		return result, err
	}

	for _, ws := range touched {
		if err := ws.Save(); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}
	return result, nil
}

// UpdateMode selects which scope Update reconciles.
type UpdateMode int

const (
	UpdateAllWorkspaces UpdateMode = iota
	UpdateOneWorkspace
	UpdateCurrentProject
)

// UpdateResult reports how many registrations changed.
type UpdateResult struct {
	Updated int
	Removed int
}

// UpdateWorkspace reconciles a single workspace's registrations against
// disk (spec §4.6): a missing manifest removes the entry; a manifest whose
// declared workspace no longer matches removes the entry; a manifest whose
// declared name differs from the registration id removes and re-adds under
// the new id.
func UpdateWorkspace(ws *workspace.Config) (UpdateResult, error) {
	var result UpdateResult

	for _, id := range ws.SortedProjectIDs() {
		dir := ws.Projects[id].Dir
		m, err := manifest.Load(dir)
		if err != nil {
			ws.RemoveProject(id)
			result.Removed++
			continue
		}
		if m.Project.Workspace != ws.Name {
			ws.RemoveProject(id)
			result.Removed++
			continue
		}
		if m.Project.Name != id {
			ws.RemoveProject(id)
			_ = ws.AddProject(m.Project.Name, dir)
			result.Updated++
		}
	}

	if err := ws.Save(); err != nil {
		return result, err
	}
	return result, nil
}

// UpdateCurrentProject registers manifestDir's project into its own
// claimed workspace (spec §4.6's current-project mode).
func UpdateCurrentProject(manifestDir string) error {
	m, err := manifest.Load(manifestDir)
	if err != nil {
		return err
	}

	ws, err := workspace.LoadFromName(m.Project.Workspace)
	if err != nil {
		ws = workspace.New(m.Project.Workspace)
	}
	if err := ws.AddProject(m.Project.Name, manifestDir); err != nil {
		return err
	}
	return ws.Save()
}
