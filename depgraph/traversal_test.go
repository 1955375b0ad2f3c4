package depgraph

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

// buildDiamond constructs a -> {b, c} -> d with b before c.
func buildDiamond(t *testing.T) *Graph[string, int, string] {
	t.Helper()
	g := New[string, int, string]()
	for _, id := range []string{"a", "b", "c", "d"} {
		assert.NoError(t, g.AddVertex(id, 0))
	}
	assert.NoError(t, g.AddEdge("a", "b", ""))
	assert.NoError(t, g.AddEdge("a", "c", ""))
	assert.NoError(t, g.AddEdge("b", "d", ""))
	assert.NoError(t, g.AddEdge("c", "d", ""))
	return g
}

func ids[ID comparable, V, L any](vertices []*Vertex[ID, V, L]) []ID {
	out := make([]ID, len(vertices))
	for i, v := range vertices {
		out[i] = v.ID()
	}
	return out
}

func TestReachableFrom(t *testing.T) {
	t.Run("linear chain", func(t *testing.T) {
		g := New[string, int, string]()
		for _, id := range []string{"a", "b", "c"} {
			assert.NoError(t, g.AddVertex(id, 0))
		}
		assert.NoError(t, g.AddEdge("a", "b", ""))
		assert.NoError(t, g.AddEdge("b", "c", ""))

		got, err := g.ReachableFrom("a")
		assert.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, ids(got))
	})

	t.Run("start vertex comes first", func(t *testing.T) {
		g := buildDiamond(t)
		got, err := g.ReachableFrom("b")
		assert.NoError(t, err)
		assert.Equal(t, []string{"b", "d"}, ids(got))
	})

	t.Run("diamond visits the join once, layers in edge order", func(t *testing.T) {
		g := buildDiamond(t)
		got, err := g.ReachableFrom("a")
		assert.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids(got))
	})

	t.Run("edge insertion order decides intra-layer order", func(t *testing.T) {
		g := New[string, int, string]()
		for _, id := range []string{"a", "b", "c", "d"} {
			assert.NoError(t, g.AddVertex(id, 0))
		}
		// Same diamond, c wired before b this time
		assert.NoError(t, g.AddEdge("a", "c", ""))
		assert.NoError(t, g.AddEdge("a", "b", ""))
		assert.NoError(t, g.AddEdge("b", "d", ""))
		assert.NoError(t, g.AddEdge("c", "d", ""))

		got, err := g.ReachableFrom("a")
		assert.NoError(t, err)
		assert.Equal(t, []string{"a", "c", "b", "d"}, ids(got))
	})

	t.Run("unknown start", func(t *testing.T) {
		g := New[string, int, string]()
		_, err := g.ReachableFrom("nope")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownVertex))
	})

	t.Run("deterministic across identical insertion histories", func(t *testing.T) {
		first := ids(mustReachable(t, buildDiamond(t), "a"))
		second := ids(mustReachable(t, buildDiamond(t), "a"))
		assert.Equal(t, first, second)
	})
}

func mustReachable(t *testing.T, g *Graph[string, int, string], id string) []*Vertex[string, int, string] {
	t.Helper()
	got, err := g.ReachableFrom(id)
	assert.NoError(t, err)
	return got
}

func TestReachableFunc(t *testing.T) {
	t.Run("excluded vertices are not traversed through", func(t *testing.T) {
		g := New[string, int, string]()
		for _, id := range []string{"a", "b", "c"} {
			assert.NoError(t, g.AddVertex(id, 0))
		}
		assert.NoError(t, g.AddEdge("a", "b", ""))
		assert.NoError(t, g.AddEdge("b", "c", ""))

		// c is only reachable via b; dropping b hides c as well
		got, err := g.ReachableFunc("a", func(v *Vertex[string, int, string]) bool {
			return v.ID() != "b"
		})
		assert.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(got))
	})

	t.Run("rejected start yields empty result", func(t *testing.T) {
		g := buildDiamond(t)
		got, err := g.ReachableFunc("a", func(v *Vertex[string, int, string]) bool {
			return false
		})
		assert.NoError(t, err)
		assert.Equal(t, 0, len(got))
	})

	t.Run("nil filter accepts everything", func(t *testing.T) {
		g := buildDiamond(t)
		got, err := g.ReachableFunc("a", nil)
		assert.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids(got))
	})

	t.Run("filter keeps alternate routes alive", func(t *testing.T) {
		g := buildDiamond(t)
		// d stays reachable through c when b is filtered out
		got, err := g.ReachableFunc("a", func(v *Vertex[string, int, string]) bool {
			return v.ID() != "b"
		})
		assert.NoError(t, err)
		assert.Equal(t, []string{"a", "c", "d"}, ids(got))
	})
}

func TestRoots(t *testing.T) {
	t.Run("all vertices are roots before any edge", func(t *testing.T) {
		g := New[string, int, string]()
		for _, id := range []string{"b", "a", "c"} {
			assert.NoError(t, g.AddVertex(id, 0))
		}
		assert.Equal(t, []string{"b", "a", "c"}, ids(g.Roots()))
	})

	t.Run("edges demote their destinations", func(t *testing.T) {
		g := buildDiamond(t)
		assert.Equal(t, []string{"a"}, ids(g.Roots()))
	})

	t.Run("multiple roots in registration order", func(t *testing.T) {
		g := New[string, int, string]()
		for _, id := range []string{"r1", "r2", "x"} {
			assert.NoError(t, g.AddVertex(id, 0))
		}
		assert.NoError(t, g.AddEdge("r1", "x", ""))
		assert.NoError(t, g.AddEdge("r2", "x", ""))

		assert.Equal(t, []string{"r1", "r2"}, ids(g.Roots()))
	})

	t.Run("empty graph has no roots", func(t *testing.T) {
		g := New[string, int, string]()
		assert.Equal(t, 0, len(g.Roots()))
	})
}
