// Package depgraph implements the in-memory DependencyGraph (spec §3,
// §4.5): Kahn's in-degree topological sort over project dependency edges,
// with deterministic FIFO tie-breaking seeded from sorted Slug order.
package depgraph

import (
	"github.com/tormodhaugland/de/internal/deerrors"
	"github.com/tormodhaugland/de/internal/slug"
)

// Graph holds the dependency relation between explicitly added projects.
type Graph struct {
	dependencies map[slug.Slug]map[slug.Slug]bool // dependent -> set of deps
	projects     map[slug.Slug]bool               // union of keys and values
	explicit     map[slug.Slug]bool                // keys only
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		dependencies: make(map[slug.Slug]map[slug.Slug]bool),
		projects:     make(map[slug.Slug]bool),
		explicit:     make(map[slug.Slug]bool),
	}
}

// AddProject registers id with the given dependencies.
func (g *Graph) AddProject(id slug.Slug, dependsOn []slug.Slug) {
	g.explicit[id] = true
	g.projects[id] = true

	set := make(map[slug.Slug]bool, len(dependsOn))
	for _, dep := range dependsOn {
		set[dep] = true
		g.projects[dep] = true
	}
	g.dependencies[id] = set
}

// GetDependencies returns id's declared dependency set.
func (g *Graph) GetDependencies(id slug.Slug) []slug.Slug {
	deps := g.dependencies[id]
	out := make([]slug.Slug, 0, len(deps))
	for dep := range deps {
		out = append(out, dep)
	}
	return slug.SortSlugs(out)
}

// ValidateDependencies checks that every dependency named by any project
// was itself explicitly added.
func (g *Graph) ValidateDependencies() error {
	var missing []deerrors.MissingDependency
	for _, dependent := range g.sortedExplicit() {
		for _, dep := range g.GetDependencies(dependent) {
			if !g.explicit[dep] {
				missing = append(missing, deerrors.MissingDependency{
					Dependent:  dependent.String(),
					Dependency: dep.String(),
				})
			}
		}
	}
	if len(missing) > 0 {
		return &deerrors.GraphError{Missing: missing}
	}
	return nil
}

// ResolveStartupOrder runs Kahn's algorithm over the explicit project set.
// The queue is seeded in sorted-Slug order so output is deterministic
// across runs (spec §4.5). A *deerrors.GraphError with Circular set is
// returned when the produced order is shorter than the project count; a
// *deerrors.GraphError with Missing set is returned first if any
// dependency was never explicitly added.
func (g *Graph) ResolveStartupOrder() ([]slug.Slug, error) {
	if err := g.ValidateDependencies(); err != nil {
		return nil, err
	}

	all := g.sortedExplicit()

	inDegree := make(map[slug.Slug]int, len(all))
	dependents := make(map[slug.Slug][]slug.Slug) // dep -> projects that depend on it
	for _, id := range all {
		deps := g.dependencies[id]
		inDegree[id] = len(deps)
		for dep := range deps {
			dependents[dep] = append(dependents[dep], id)
		}
	}
	for dep := range dependents {
		dependents[dep] = slug.SortSlugs(dependents[dep])
	}

	queue := make([]slug.Slug, 0, len(all))
	for _, id := range all {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]slug.Slug, 0, len(all))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, next := range dependents[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(all) {
		processed := make(map[slug.Slug]bool, len(order))
		for _, id := range order {
			processed[id] = true
		}
		var cycle []string
		for _, id := range all {
			if !processed[id] {
				cycle = append(cycle, id.String())
			}
		}
		return nil, &deerrors.GraphError{Circular: cycle}
	}

	return order, nil
}

// ResolveShutdownOrder is the startup order reversed.
func (g *Graph) ResolveShutdownOrder() ([]slug.Slug, error) {
	order, err := g.ResolveStartupOrder()
	if err != nil {
		return nil, err
	}
	reversed := make([]slug.Slug, len(order))
	for i, id := range order {
		reversed[len(order)-1-i] = id
	}
	return reversed, nil
}

// TransitiveDependencies returns the closure of id's dependencies,
// including id itself, used by spin_up_project_and_dependencies (spec
// §4.7) to filter the full startup order down to what a single project
// needs.
func (g *Graph) TransitiveDependencies(id slug.Slug) map[slug.Slug]bool {
	closure := map[slug.Slug]bool{id: true}
	stack := []slug.Slug{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for dep := range g.dependencies[cur] {
			if !closure[dep] {
				closure[dep] = true
				stack = append(stack, dep)
			}
		}
	}
	return closure
}

func (g *Graph) sortedExplicit() []slug.Slug {
	ids := make([]slug.Slug, 0, len(g.explicit))
	for id := range g.explicit {
		ids = append(ids, id)
	}
	return slug.SortSlugs(ids)
}
