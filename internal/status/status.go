// Package status implements the per-project and workspace-level status
// engine (spec §4.11): docker-compose service table parsing and git
// branch/dirty/ahead-behind collection, aggregated into a summary with
// suggested remediation commands.
package status

import (
	"context"
	"os"
	"strings"

	"github.com/tormodhaugland/de/internal/compose"
	"github.com/tormodhaugland/de/internal/gitrepo"
	"github.com/tormodhaugland/de/internal/manifest"
	"github.com/tormodhaugland/de/internal/slug"
)

// ServiceStatus is one row of a docker-compose ps -a table.
type ServiceStatus struct {
	Name   string
	Status string
	Ports  string
}

// Up reports whether the service's STATUS column contains "Up".
func (s ServiceStatus) Up() bool {
	return strings.Contains(s.Status, "Up")
}

// GitStatus is the git portion of a project's status.
type GitStatus struct {
	Enabled bool
	IsRepo  bool
	Branch  string
	Dirty   bool
	Ahead   int
	Behind  int
}

// ProjectStatus is one project's full status record.
type ProjectStatus struct {
	Project         slug.Slug
	Present         bool
	Current         bool
	DockerServices  []ServiceStatus
	DownedServices  []ServiceStatus
	Git             GitStatus
	ComposeErr      error
}

// Collect builds a ProjectStatus for one project (spec §4.11).
func Collect(ctx context.Context, id slug.Slug, dir string, m *manifest.ProjectManifest, currentDir string) ProjectStatus {
	ps := ProjectStatus{Project: id}

	info, statErr := os.Stat(dir)
	ps.Present = statErr == nil && info.IsDir()
	ps.Current = currentDir != "" && currentDir == dir
	if !ps.Present {
		return ps
	}

	composePath := m.ComposePath(dir)
	if compose.Exists(composePath) {
		raw, err := compose.PSAll(ctx, composePath)
		if err != nil {
			ps.ComposeErr = err
		} else {
			services := ParsePSTable(raw)
			ps.DockerServices = services
			for _, s := range services {
				if !s.Up() {
					ps.DownedServices = append(ps.DownedServices, s)
				}
			}
		}
	}

	ps.Git = collectGit(m, dir)
	return ps
}

func collectGit(m *manifest.ProjectManifest, dir string) GitStatus {
	if !m.Git.Enabled {
		return GitStatus{Enabled: false}
	}
	if !gitrepo.IsRepo(dir) {
		return GitStatus{Enabled: true, IsRepo: false}
	}

	info, err := gitrepo.GetInfo(dir)
	gs := GitStatus{Enabled: true, IsRepo: true}
	if err == nil {
		gs.Branch = info.Branch
		gs.Dirty = info.Dirty
	}
	if ahead, behind, err := gitrepo.AheadBehind(dir); err == nil {
		gs.Ahead = ahead
		gs.Behind = behind
	}
	return gs
}

// ParsePSTable parses docker-compose ps -a's text table by reading the
// header row's column starts for SERVICE, STATUS and PORTS, then slicing
// each subsequent row at those same offsets (spec §4.11).
func ParsePSTable(raw string) []ServiceStatus {
	lines := strings.Split(raw, "\n")
	var header string
	headerIdx := -1
	for i, line := range lines {
		if strings.Contains(line, "SERVICE") && strings.Contains(line, "STATUS") {
			header = line
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}

	serviceCol := strings.Index(header, "SERVICE")
	statusCol := strings.Index(header, "STATUS")
	portsCol := strings.Index(header, "PORTS")
	if serviceCol < 0 || statusCol < 0 {
		return nil
	}

	var out []ServiceStatus
	for _, line := range lines[headerIdx+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, sliceRow(line, serviceCol, statusCol, portsCol))
	}
	return out
}

func sliceRow(line string, serviceCol, statusCol, portsCol int) ServiceStatus {
	sub := func(s string, start, end int) string {
		if start >= len(s) {
			return ""
		}
		if end < 0 || end > len(s) {
			end = len(s)
		}
		if end < start {
			return ""
		}
		return strings.TrimSpace(s[start:end])
	}

	var status, ports string
	if portsCol >= 0 {
		status = sub(line, statusCol, portsCol)
		ports = sub(line, portsCol, -1)
	} else {
		status = sub(line, statusCol, -1)
	}

	return ServiceStatus{
		Name:   sub(line, serviceCol, statusCol),
		Status: status,
		Ports:  ports,
	}
}

// Summary aggregates counts across a workspace's projects, per spec §4.11.
type Summary struct {
	DirtyCount   int
	AheadCount   int
	BehindCount  int
	DownedCount  int
	Remediations []string
}

// Summarize aggregates statuses into a Summary with one suggested
// remediation per category that has a nonzero count.
func Summarize(statuses []ProjectStatus) Summary {
	var s Summary
	for _, ps := range statuses {
		if ps.Git.Dirty {
			s.DirtyCount++
		}
		if ps.Git.Ahead > 0 {
			s.AheadCount++
		}
		if ps.Git.Behind > 0 {
			s.BehindCount++
		}
		s.DownedCount += len(ps.DownedServices)
	}
	if s.DirtyCount > 0 {
		s.Remediations = append(s.Remediations, "de git switch --on-dirty stash")
	}
	if s.AheadCount > 0 {
		s.Remediations = append(s.Remediations, "de exec-all -- git push")
	}
	if s.BehindCount > 0 {
		s.Remediations = append(s.Remediations, "de git base-reset")
	}
	if s.DownedCount > 0 {
		s.Remediations = append(s.Remediations, "de start")
	}
	return s
}
