package graph_test

import (
	"testing"

	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/port"
	"github.com/specialistvlad/flowgridgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// sumFunction builds `sum = a + b` with the exit reached directly from the
// entry.
func sumFunction(t *testing.T) *graph.Function {
	t.Helper()

	fn := graph.NewFunction("sum")
	require.True(t, fn.AddInputDefinition(graph.PortDefinition{ID: "a", Name: "a", Type: cty.Number}))
	require.True(t, fn.AddInputDefinition(graph.PortDefinition{ID: "b", Name: "b", Type: cty.Number}))
	require.True(t, fn.AddOutputDefinition(graph.PortDefinition{ID: "sum", Name: "sum", Type: cty.Number}))

	require.NoError(t, fn.AddNode(newAdd("add")))
	fn.Connect(conn("entry.a", "add.a"))
	fn.Connect(conn("entry.b", "add.b"))
	fn.Connect(conn("add.sum", "exit.sum"))
	fn.Connect(conn("entry.out", "exit.in"))
	return fn
}

func args(values map[string]cty.Value) graph.ArgumentSource {
	return func(id string) cty.Value { return values[id] }
}

func TestFunction_EntryAndExitExistFromConstruction(t *testing.T) {
	t.Parallel()

	fn := graph.NewFunction("empty")
	nodes := fn.Graph().Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, graph.EntryNodeID, nodes[0].ID())
	assert.Equal(t, graph.ExitNodeID, nodes[1].ID())
	assert.Same(t, fn, fn.Graph().Function())
	assert.Equal(t, cty.NilType, fn.ReturnType())
}

func TestFunction_DuplicateDefinitionRejected(t *testing.T) {
	t.Parallel()

	fn := graph.NewFunction("f")
	def := graph.NewPortDefinition("x", cty.Number)
	require.NotEmpty(t, def.ID)

	require.True(t, fn.AddInputDefinition(def))
	version := fn.Version()

	require.False(t, fn.AddInputDefinition(def))
	require.False(t, fn.AddInputDefinition(graph.PortDefinition{ID: def.ID, Name: "other", Type: cty.String}))
	require.Len(t, fn.Inputs(), 1)
	require.Equal(t, version, fn.Version(), "a rejected slot does not broadcast")

	require.False(t, fn.AddInputDefinition(graph.PortDefinition{ID: graph.EntryFlowPort, Type: cty.Number}), "reserved id")
	require.False(t, fn.AddOutputDefinition(graph.PortDefinition{ID: graph.ExitResultPort, Type: cty.Bool}), "reserved id")

	require.True(t, fn.AddOutputDefinition(graph.PortDefinition{ID: def.ID, Name: "x", Type: cty.Number}), "inputs and outputs are separate lists")
	require.False(t, fn.AddOutputDefinition(graph.PortDefinition{ID: def.ID, Name: "x", Type: cty.Number}))
	require.Len(t, fn.Outputs(), 1)

	require.True(t, fn.RemoveInputDefinition(def.ID))
	require.False(t, fn.RemoveInputDefinition(def.ID))
	require.Empty(t, fn.Inputs())
}

func TestFunction_PortChangeNotifiesSubscribers(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	fn := sumFunction(t)
	require.NoError(t, fn.Graph().Start(ctx, &graph.ExecContext{}))

	notified := 0
	cancel := fn.Subscribe(func() { notified++ })

	require.True(t, fn.AddInputDefinition(graph.PortDefinition{ID: "c", Name: "c", Type: cty.Number}))
	require.Equal(t, 1, notified)

	// The running body was rebound, so the new slot exists as a port.
	_, found := findPort(fn.Entry(), "c")
	require.True(t, found)

	cancel()
	require.True(t, fn.RemoveInputDefinition("c"))
	require.Equal(t, 1, notified)
	_, found = findPort(fn.Entry(), "c")
	require.False(t, found)
}

func TestCallSite_InstancesAreIsolated(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	fn := sumFunction(t)
	first := graph.NewCallSite(fn, args(map[string]cty.Value{"a": cty.NumberIntVal(1), "b": cty.NumberIntVal(2)}))
	second := graph.NewCallSite(fn, args(map[string]cty.Value{"a": cty.NumberIntVal(10), "b": cty.NumberIntVal(20)}))
	ecFirst, ecSecond := &graph.ExecContext{Agent: "first"}, &graph.ExecContext{Agent: "second"}

	require.True(t, first.Call(ctx, ecFirst))
	require.True(t, second.Call(ctx, ecSecond))
	require.True(t, first.Call(ctx, ecFirst))

	assert.True(t, first.Result("sum").RawEquals(cty.NumberIntVal(3)))
	assert.True(t, second.Result("sum").RawEquals(cty.NumberIntVal(30)))

	require.NotSame(t, first.Instance(), second.Instance())
	require.NotSame(t, fn, first.Instance())
	assert.Same(t, ecFirst, first.Instance().Graph().Exec())
	assert.Same(t, ecSecond, second.Instance().Graph().Exec())
	assert.False(t, fn.Graph().Running(), "the definition itself is never started by a call site")
}

func TestCallSite_ArgumentsReadLazily(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	reads := 0
	current := map[string]cty.Value{"a": cty.NumberIntVal(1), "b": cty.NumberIntVal(1)}
	site := graph.NewCallSite(sumFunction(t), func(id string) cty.Value {
		reads++
		return current[id]
	})

	ec := &graph.ExecContext{}
	require.NoError(t, site.Start(ctx, ec))
	require.Equal(t, 0, reads, "starting the instance reads nothing")

	require.True(t, site.Call(ctx, ec))
	require.Equal(t, 2, reads)
	require.True(t, site.Result("sum").RawEquals(cty.NumberIntVal(2)))

	current["a"] = cty.NumberIntVal(40)
	current["b"] = cty.StringVal("2")
	require.True(t, site.Call(ctx, ec))
	require.True(t, site.Result("sum").RawEquals(cty.NumberIntVal(42)), "arguments are converted to the slot type")
}

func TestCallSite_ExitNotReached(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	fn := graph.NewFunction("dead-end")
	require.True(t, fn.AddOutputDefinition(graph.PortDefinition{ID: "out", Name: "out", Type: cty.Number}))
	site := graph.NewCallSite(fn, nil)

	require.False(t, site.Call(ctx, &graph.ExecContext{}))
	require.False(t, site.Exited())
	require.True(t, site.Result("out").IsNull())
	require.Equal(t, cty.NilVal, site.Result("unknown"))
}

func TestCallSite_ResultFlagFromExit(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	fn := sumFunction(t)
	fn.Exit().SetInputDefault(graph.ExitResultPort, cty.False)
	site := graph.NewCallSite(fn, args(map[string]cty.Value{"a": cty.NumberIntVal(1), "b": cty.NumberIntVal(1)}))

	require.False(t, site.Call(ctx, &graph.ExecContext{}))
	require.True(t, site.Exited())
	require.True(t, site.Result("sum").RawEquals(cty.NumberIntVal(2)), "outputs are written back even when the flag is false")
}

func TestCallSite_RecloneAfterSignatureChange(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	fn := sumFunction(t)
	site := graph.NewCallSite(fn, args(map[string]cty.Value{"a": cty.NumberIntVal(1), "b": cty.NumberIntVal(2)}))
	ec := &graph.ExecContext{}

	require.True(t, site.Call(ctx, ec))
	before := site.Instance()
	require.True(t, site.Call(ctx, ec))
	require.Same(t, before, site.Instance(), "unchanged definitions reuse the instance")

	require.True(t, fn.AddOutputDefinition(graph.PortDefinition{ID: "extra", Name: "extra", Type: cty.String}))
	require.True(t, site.Call(ctx, ec))
	require.NotSame(t, before, site.Instance())
	require.False(t, before.Graph().Running(), "the stale instance is stopped")
	require.True(t, site.Result("extra").IsNull())
	require.True(t, site.Result("sum").RawEquals(cty.NumberIntVal(3)))
}

func TestCallSite_SetFunction(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	site := graph.NewCallSite(sumFunction(t), args(map[string]cty.Value{"a": cty.NumberIntVal(1), "b": cty.NumberIntVal(2)}))
	ec := &graph.ExecContext{}
	require.True(t, site.Call(ctx, ec))

	other := graph.NewFunction("noop")
	other.Connect(conn("entry.out", "exit.in"))
	site.SetFunction(other)
	require.Nil(t, site.Instance())
	require.True(t, site.Call(ctx, ec))
	require.Equal(t, "noop", site.Instance().Name())
	require.Equal(t, cty.NilVal, site.Result("sum"))
}

func TestFunction_CloneSharesNoState(t *testing.T) {
	t.Parallel()

	fn := sumFunction(t)
	clone := fn.Clone()

	require.NotSame(t, fn.Graph(), clone.Graph())
	require.NotSame(t, fn.Entry(), clone.Entry())
	require.Equal(t, fn.Inputs(), clone.Inputs())
	require.Equal(t, fn.Graph().Connections(), clone.Graph().Connections())

	orig, _ := fn.Graph().Node("add")
	copied, _ := clone.Graph().Node("add")
	require.NotSame(t, orig, copied)

	// Editing the clone's signature leaves the definition alone.
	require.True(t, clone.AddInputDefinition(graph.PortDefinition{ID: "z", Name: "z", Type: cty.Number}))
	require.Len(t, fn.Inputs(), 2)
	require.Len(t, clone.Inputs(), 3)
}

func findPort(n graph.Node, id string) (any, bool) {
	type porter interface {
		Ports() []port.Port
	}
	for _, p := range n.(porter).Ports() {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}
