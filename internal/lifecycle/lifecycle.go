// Package lifecycle implements spin-up/spin-down of a workspace or a
// single project-and-its-dependencies (spec §4.7), driving the
// dependency-ordered docker-compose up/down sequence.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/tormodhaugland/de/internal/compose"
	"github.com/tormodhaugland/de/internal/depgraph"
	"github.com/tormodhaugland/de/internal/manifest"
	"github.com/tormodhaugland/de/internal/slug"
	"github.com/tormodhaugland/de/internal/workspace"
)

// ProjectOutcome records one project's lifecycle result.
type ProjectOutcome struct {
	Project slug.Slug
	Applied bool
	Err     error
}

// LoadedProject pairs a workspace's registered directory with its parsed
// manifest.
type LoadedProject struct {
	ID  slug.Slug
	Dir string
	Man *manifest.ProjectManifest
}

// LoadProjects loads every registered project's manifest in ws, returning
// them alongside any individual load errors (which the caller decides
// whether to treat as fatal).
func LoadProjects(ws *workspace.Config) (map[slug.Slug]LoadedProject, map[slug.Slug]error) {
	loaded := make(map[slug.Slug]LoadedProject, len(ws.Projects))
	errs := make(map[slug.Slug]error)
	for id, wp := range ws.Projects {
		m, err := manifest.Load(wp.Dir)
		if err != nil {
			errs[id] = err
			continue
		}
		loaded[id] = LoadedProject{ID: id, Dir: wp.Dir, Man: m}
	}
	return loaded, errs
}

// BuildGraph constructs a depgraph.Graph from loaded's depends_on fields.
func BuildGraph(loaded map[slug.Slug]LoadedProject) *depgraph.Graph {
	g := depgraph.New()
	for id, p := range loaded {
		g.AddProject(id, p.Man.Project.DependsOn)
	}
	return g
}

// SpinUpWorkspace loads every project in ws, validates and resolves the
// dependency order, and invokes docker-compose up -d for each project with
// a compose file, in that order.
func SpinUpWorkspace(ctx context.Context, ws *workspace.Config) ([]ProjectOutcome, error) {
	loaded, loadErrs := LoadProjects(ws)
	g := BuildGraph(loaded)

	order, err := g.ResolveStartupOrder()
	if err != nil {
		return nil, err
	}

	var outcomes []ProjectOutcome
	for id, err := range loadErrs {
		outcomes = append(outcomes, ProjectOutcome{Project: id, Err: err})
	}
	for _, id := range order {
		p := loaded[id]
		path := p.Man.ComposePath(p.Dir)
		applied, err := compose.Up(ctx, path)
		outcomes = append(outcomes, ProjectOutcome{Project: id, Applied: applied, Err: err})
	}
	return outcomes, nil
}

// SpinDownWorkspace is SpinUpWorkspace's symmetric counterpart, using the
// reversed (shutdown) order.
func SpinDownWorkspace(ctx context.Context, ws *workspace.Config) ([]ProjectOutcome, error) {
	loaded, loadErrs := LoadProjects(ws)
	g := BuildGraph(loaded)

	order, err := g.ResolveShutdownOrder()
	if err != nil {
		return nil, err
	}

	var outcomes []ProjectOutcome
	for id, err := range loadErrs {
		outcomes = append(outcomes, ProjectOutcome{Project: id, Err: err})
	}
	for _, id := range order {
		p := loaded[id]
		path := p.Man.ComposePath(p.Dir)
		applied, err := compose.Down(ctx, path)
		outcomes = append(outcomes, ProjectOutcome{Project: id, Applied: applied, Err: err})
	}
	return outcomes, nil
}

// SpinUpProjectAndDependencies computes the transitive-dependency closure
// of projectName and brings up just that subset, in full-workspace
// startup order filtered to the closure (spec §4.7).
func SpinUpProjectAndDependencies(ctx context.Context, ws *workspace.Config, projectName slug.Slug) ([]ProjectOutcome, error) {
	loaded, loadErrs := LoadProjects(ws)
	g := BuildGraph(loaded)

	if _, ok := loaded[projectName]; !ok {
		return nil, fmt.Errorf("lifecycle: project %q not registered in workspace %q", projectName, ws.Name)
	}
	closure := g.TransitiveDependencies(projectName)

	order, err := g.ResolveStartupOrder()
	if err != nil {
		return nil, err
	}

	var outcomes []ProjectOutcome
	for id, err := range loadErrs {
		if closure[id] {
			outcomes = append(outcomes, ProjectOutcome{Project: id, Err: err})
		}
	}
	for _, id := range order {
		if !closure[id] {
			continue
		}
		p := loaded[id]
		path := p.Man.ComposePath(p.Dir)
		applied, err := compose.Up(ctx, path)
		outcomes = append(outcomes, ProjectOutcome{Project: id, Applied: applied, Err: err})
	}
	return outcomes, nil
}

// ActiveWorkspaceChoice is the operator's answer to the pre-check
// spin_up_project_and_dependencies triggers when a different workspace is
// already active (spec §4.7). cmd/de's start command offers the same three
// choices as a menu indexed in this order, but works with the menu index
// rather than this type.
type ActiveWorkspaceChoice int

const (
	// ChoiceAbort cancels the whole operation.
	ChoiceAbort ActiveWorkspaceChoice = iota
	// ChoiceStopOther stops the currently active workspace before starting this one.
	ChoiceStopOther
	// ChoiceStartAlongside leaves the other workspace running and starts this one too.
	ChoiceStartAlongside
)
