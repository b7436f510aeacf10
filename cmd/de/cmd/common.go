package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tormodhaugland/de/internal/globalconfig"
	"github.com/tormodhaugland/de/internal/manifest"
	"github.com/tormodhaugland/de/internal/slug"
	"github.com/tormodhaugland/de/internal/workspace"
)

// findCurrentProjectDir walks upward from the process's working directory
// looking for a de.toml, mirroring the upward search spec §4.9/§4.8 assume
// for "the current directory is inside a project".
func findCurrentProjectDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, statErr := os.Stat(filepath.Join(dir, manifest.Filename)); statErr == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// currentProjectWorkspace loads the manifest at a current project dir (if
// any) and returns the workspace it claims.
func currentProjectWorkspace() *slug.Slug {
	dir := findCurrentProjectDir()
	if dir == "" {
		return nil
	}
	m, err := manifest.Load(dir)
	if err != nil {
		return nil
	}
	return &m.Project.Workspace
}

// resolveWorkspace implements the "active" resolver from spec §9: explicit
// name argument, else the current project's workspace, else the working
// (global-config) active workspace.
func resolveWorkspace(explicit string) (*workspace.Config, error) {
	if explicit != "" {
		name, err := slug.From(explicit)
		if err != nil {
			return nil, err
		}
		return workspace.LoadFromName(name)
	}

	if cw := currentProjectWorkspace(); cw != nil {
		ws, err := workspace.LoadFromName(*cw)
		if err == nil {
			return ws, nil
		}
	}

	active, err := globalconfig.GetActiveWorkspace()
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, fmt.Errorf("no active workspace; pass a workspace name or run inside a registered project")
	}
	return workspace.LoadFromName(*active)
}

func printErr(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
}

func jsonEncode(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func bgContext() context.Context {
	return context.Background()
}
