package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tormodhaugland/de/internal/deerrors"
	"github.com/tormodhaugland/de/internal/slug"
)

func TestResolveStartupOrderLinear(t *testing.T) {
	g := New()
	g.AddProject("web", []slug.Slug{"api"})
	g.AddProject("api", []slug.Slug{"db"})
	g.AddProject("db", nil)

	order, err := g.ResolveStartupOrder()
	require.NoError(t, err)
	assert.Equal(t, []slug.Slug{"db", "api", "web"}, order)
}

func TestResolveStartupOrderDeterministicTieBreak(t *testing.T) {
	g := New()
	g.AddProject("web", nil)
	g.AddProject("api", nil)
	g.AddProject("cache", nil)

	order, err := g.ResolveStartupOrder()
	require.NoError(t, err)
	assert.Equal(t, []slug.Slug{"api", "cache", "web"}, order)
}

func TestResolveShutdownOrderIsReversed(t *testing.T) {
	g := New()
	g.AddProject("web", []slug.Slug{"api"})
	g.AddProject("api", nil)

	up, err := g.ResolveStartupOrder()
	require.NoError(t, err)
	down, err := g.ResolveShutdownOrder()
	require.NoError(t, err)

	for i := range up {
		assert.Equal(t, up[i], down[len(down)-1-i])
	}
}

func TestResolveStartupOrderDetectsCycle(t *testing.T) {
	g := New()
	g.AddProject("a", []slug.Slug{"b"})
	g.AddProject("b", []slug.Slug{"a"})

	_, err := g.ResolveStartupOrder()
	require.Error(t, err)
	var graphErr *deerrors.GraphError
	require.ErrorAs(t, err, &graphErr)
	assert.Len(t, graphErr.Circular, 2)
}

func TestValidateDependenciesMissing(t *testing.T) {
	g := New()
	g.AddProject("web", []slug.Slug{"api"})

	err := g.ValidateDependencies()
	require.Error(t, err)
	var graphErr *deerrors.GraphError
	require.ErrorAs(t, err, &graphErr)
	require.Len(t, graphErr.Missing, 1)
	assert.Equal(t, "web", graphErr.Missing[0].Dependent)
	assert.Equal(t, "api", graphErr.Missing[0].Dependency)
}

func TestTransitiveDependencies(t *testing.T) {
	g := New()
	g.AddProject("web", []slug.Slug{"api"})
	g.AddProject("api", []slug.Slug{"db"})
	g.AddProject("db", nil)

	closure := g.TransitiveDependencies("web")
	assert.True(t, closure["web"])
	assert.True(t, closure["api"])
	assert.True(t, closure["db"])
	assert.Len(t, closure, 3)
}

func TestGetDependenciesSorted(t *testing.T) {
	g := New()
	g.AddProject("web", []slug.Slug{"cache", "api"})
	g.AddProject("api", nil)
	g.AddProject("cache", nil)

	assert.Equal(t, []slug.Slug{"api", "cache"}, g.GetDependencies("web"))
}
