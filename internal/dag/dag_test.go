package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNode(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddNode("a")
	g.AddNode("a")
	g.AddNode("b")

	require.Len(t, g.nodes, 2)
	require.Equal(t, []string{"a", "b"}, g.order)
}

func TestAddEdge(t *testing.T) {
	t.Parallel()

	t.Run("success case", func(t *testing.T) {
		t.Parallel()
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")

		require.NoError(t, g.AddEdge("a", "c"))
		require.NoError(t, g.AddEdge("b", "c"))

		deps, err := g.Dependencies("c")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, deps)

		dependents, err := g.Dependents("a")
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, dependents)
	})

	t.Run("error cases", func(t *testing.T) {
		t.Parallel()
		g := New()
		g.AddNode("a")

		assert.ErrorContains(t, g.AddEdge("dne", "a"), "source node not found")
		assert.ErrorContains(t, g.AddEdge("a", "dne"), "destination node not found")
		assert.ErrorIs(t, g.AddEdge("a", "a"), ErrCycle)

		_, err := g.Dependencies("dne")
		assert.Error(t, err)
		_, err = g.Dependents("dne")
		assert.Error(t, err)
	})
}

func TestTopologicalOrder(t *testing.T) {
	t.Parallel()

	g := New()
	for _, id := range []string{"main", "helper", "leaf", "solo"} {
		g.AddNode(id)
	}
	// main calls helper, helper calls leaf.
	require.NoError(t, g.AddEdge("helper", "main"))
	require.NoError(t, g.AddEdge("leaf", "helper"))

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	require.Equal(t, []string{"leaf", "helper", "main", "solo"}, order)
	require.NoError(t, g.DetectCycles())
}

func TestDetectCycles(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		nodes []string
		edges [][2]string
		want  string
	}{
		{
			name:  "simple direct cycle",
			nodes: []string{"a", "b"},
			edges: [][2]string{{"a", "b"}, {"b", "a"}},
			want:  "a -> b -> a",
		},
		{
			name:  "longer cycle",
			nodes: []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "a"}},
			want:  "a -> d -> c -> b -> a",
		},
		{
			name:  "cycle in a disjoint component",
			nodes: []string{"a", "b", "x", "y", "z"},
			edges: [][2]string{{"a", "b"}, {"x", "y"}, {"y", "z"}, {"z", "y"}},
			want:  "y -> z -> y",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			g := New()
			for _, id := range tc.nodes {
				g.AddNode(id)
			}
			for _, e := range tc.edges {
				require.NoError(t, g.AddEdge(e[0], e[1]))
			}
			err := g.DetectCycles()
			require.ErrorIs(t, err, ErrCycle)
			require.ErrorContains(t, err, tc.want)
		})
	}
}
