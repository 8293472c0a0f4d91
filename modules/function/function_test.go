package function_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/registry"
	"github.com/specialistvlad/flowgridgo/internal/testutil"
	"github.com/specialistvlad/flowgridgo/modules/arith"
	"github.com/specialistvlad/flowgridgo/modules/event"
	"github.com/specialistvlad/flowgridgo/modules/flowctl"
	"github.com/specialistvlad/flowgridgo/modules/function"
	"github.com/specialistvlad/flowgridgo/modules/print"
	"github.com/specialistvlad/flowgridgo/modules/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

var modules = []registry.Module{
	&function.Module{},
	&event.Module{},
	&flowctl.Module{},
	&arith.Module{},
	&value.Module{},
	&print.Module{},
}

const factorialHCL = `
graph "main" {
  node "function.custom" "fact" {
    name    = "fact"
    params  = [{ name = "n", type = number }]
    returns = number
  }
  node "math.compare" "base" {
    op = "<="
  }
  defaults "base" { b = 1 }
  node "flow.branch" "check" {}
  node "value.constant" "one" {
    value = 1
  }
  node "function.return" "done" {}
  node "math.subtract" "dec" {}
  defaults "dec" { b = 1 }
  node "function.invoke" "self" {
    name    = "fact"
    args    = ["n"]
    returns = number
  }
  node "math.multiply" "times" {}
  node "function.return" "recurse" {}

  connect {
    from = "fact.body"
    to   = "check.in"
  }
  connect {
    from = "fact.n"
    to   = "base.a"
  }
  connect {
    from = "base.result"
    to   = "check.condition"
  }
  connect {
    from = "check.true"
    to   = "done.in"
  }
  connect {
    from = "one.value"
    to   = "done.value"
  }
  connect {
    from = "check.false"
    to   = "recurse.in"
  }
  connect {
    from = "fact.n"
    to   = "dec.a"
  }
  connect {
    from = "dec.result"
    to   = "self.n"
  }
  connect {
    from = "fact.n"
    to   = "times.a"
  }
  connect {
    from = "self.result"
    to   = "times.b"
  }
  connect {
    from = "times.result"
    to   = "recurse.value"
  }
}
`

func TestCustom_RecursiveFactorial(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		n    int64
		want int
	}{
		{n: 0, want: 1},
		{n: 1, want: 1},
		{n: 5, want: 120},
		{n: 10, want: 3628800},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("fact(%d)", tc.n), func(t *testing.T) {
			t.Parallel()
			ctx, _ := testutil.Context(t)

			p := testutil.BuildHCL(t, ctx, factorialHCL, modules...)
			g := testutil.StartGraph(t, ctx, p, "main", &graph.ExecContext{})

			got, ok := graph.CallFunctionAs[int](g, "fact", cty.NumberIntVal(tc.n))
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
			assert.Empty(t, g.Failures())

			n, _ := g.Node("fact")
			assert.Equal(t, 0, n.(*function.Custom).Depth(), "every frame is popped")
		})
	}
}

func TestCustom_RecursionLimit(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	opts := graph.DefaultOptions()
	opts.MaxCallDepth = 3
	p := testutil.BuildHCLWithOptions(t, ctx, factorialHCL, opts, modules...)
	g := testutil.StartGraph(t, ctx, p, "main", &graph.ExecContext{})

	require.NotPanics(t, func() {
		_, ok := graph.CallFunctionAs[int](g, "fact", cty.NumberIntVal(10))
		assert.False(t, ok, "the truncated call chain yields null")
	})

	failures := g.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "fact", failures[0].NodeID)
	assert.ErrorIs(t, failures[0], graph.ErrRecursionLimit)
	assert.True(t, graph.IsUsageError(failures[0]))

	// The guard does not outlive the failing call.
	got, ok := graph.CallFunctionAs[int](g, "fact", cty.NumberIntVal(3))
	require.True(t, ok)
	assert.Equal(t, 6, got)
}

func TestReturn_Semantics(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		returns   string
		value     string
		wantOK    bool
		wantErr   error
		wantValue cty.Value
		wantLog   string
	}{
		{name: "matching type", returns: "returns = number", value: "42", wantOK: true, wantValue: cty.NumberIntVal(42)},
		{name: "dynamic return type", returns: "returns = any", value: `"x"`, wantOK: true, wantValue: cty.StringVal("x")},
		{name: "tuple converted to list", returns: "returns = list(number)", value: "[1, 2]", wantOK: true, wantValue: cty.ListVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)})},
		{name: "object converted to map", returns: "returns = map(string)", value: `{ a = "x" }`, wantOK: true, wantValue: cty.MapVal(map[string]cty.Value{"a": cty.StringVal("x")})},
		{name: "type mismatch", returns: "returns = number", value: `"oops"`, wantOK: false, wantErr: graph.ErrReturnTypeMismatch},
		{name: "value without return type", returns: "", value: "1", wantOK: true, wantLog: "Returned value dropped"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx, logs := testutil.Context(t)

			src := `
function "f" {
  ` + tc.returns + `
  node "value.constant" "v" {
    value = ` + tc.value + `
  }
  node "function.return" "ret" {}
  connect {
    from = "entry.out"
    to   = "ret.in"
  }
  connect {
    from = "v.value"
    to   = "ret.value"
  }
}
`
			p := testutil.BuildHCL(t, ctx, src, modules...)
			fn, ok := p.Function("f")
			require.True(t, ok)

			site := graph.NewCallSite(fn, nil)
			t.Cleanup(site.Stop)
			require.Equal(t, tc.wantOK, site.Call(ctx, &graph.ExecContext{}))
			require.False(t, site.Exited(), "a return ends the call before the exit")

			failures := site.Instance().Graph().Failures()
			if tc.wantErr != nil {
				require.Len(t, failures, 1)
				assert.ErrorIs(t, failures[0], tc.wantErr)
				assert.Equal(t, cty.NilVal, site.Returned(), "nothing is written back")
				return
			}
			require.Empty(t, failures)
			if tc.wantValue.Type() != cty.NilType {
				assert.True(t, site.Returned().RawEquals(tc.wantValue), "got %#v", site.Returned())
			}
			if tc.wantLog != "" {
				testutil.AssertLogContains(t, logs, tc.wantLog)
				assert.True(t, site.Returned().IsNull())
			}
		})
	}
}

func TestReturn_OutsideOfCall(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	p := testutil.BuildHCL(t, ctx, `
graph "main" {
  node "event.start" "go" {}
  node "function.return" "ret" {}
  connect {
    from = "go.out"
    to   = "ret.in"
  }
}
`, modules...)
	g := testutil.StartGraph(t, ctx, p, "main", &graph.ExecContext{})

	failures := g.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "ret", failures[0].NodeID)
	assert.ErrorIs(t, failures[0], graph.ErrNoReturnContext)
}

const callHCL = `
function "add" {
  input "a" { type = number }
  input "b" { type = number }
  output "sum" { type = number }
  node "math.add" "adder" {}
  connect {
    from = "entry.a"
    to   = "adder.a"
  }
  connect {
    from = "entry.b"
    to   = "adder.b"
  }
  connect {
    from = "adder.result"
    to   = "exit.sum"
  }
  connect {
    from = "entry.out"
    to   = "exit.in"
  }
}

graph "main" {
  node "event.start" "go" {}
  node "function.call" "small" {
    function = "add"
  }
  defaults "small" {
    a = 2
    b = 3
  }
  node "function.call" "large" {
    function = "add"
  }
  defaults "large" {
    a = 20
    b = 30
  }
  node "debug.print" "show_small" {
    label = "small"
  }
  node "debug.print" "show_large" {
    label = "large"
  }
  connect {
    from = "go.out"
    to   = "small.in"
  }
  connect {
    from = "small.out"
    to   = "large.in"
  }
  connect {
    from = "large.out"
    to   = "show_small.in"
  }
  connect {
    from = "small.sum"
    to   = "show_small.value"
  }
  connect {
    from = "show_small.out"
    to   = "show_large.in"
  }
  connect {
    from = "large.sum"
    to   = "show_large.value"
  }
}
`

func TestCall_IsolatedCallSitesWriteBack(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	var out bytes.Buffer
	p := testutil.BuildHCL(t, ctx, callHCL, modules...)
	g := testutil.StartGraph(t, ctx, p, "main", &graph.ExecContext{Agent: &out})

	assert.Equal(t, "small = 5\nlarge = 50\n", out.String())
	assert.Empty(t, g.Failures())

	small, _ := g.Node("small")
	large, _ := g.Node("large")
	assert.NotSame(t, small.(*function.Call).Site().Instance(), large.(*function.Call).Site().Instance())
	assert.True(t, small.(*function.Call).Site().OK())
}

func TestCall_FollowsSignatureChange(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	p := testutil.BuildHCL(t, ctx, callHCL, modules...)
	g := testutil.StartGraph(t, ctx, p, "main", &graph.ExecContext{Agent: &bytes.Buffer{}})
	fn, _ := p.Function("add")

	n, _ := g.Node("small")
	call := n.(*function.Call)
	_, found := call.Port("c")
	require.False(t, found)

	require.True(t, fn.AddInputDefinition(graph.PortDefinition{ID: "c", Name: "c", Type: cty.Number}))
	_, found = call.Port("c")
	require.True(t, found, "the running graph rebinds the call node")

	// Existing wiring survives the rebind.
	before := call.Site().Instance()
	require.True(t, call.Site().Call(ctx, g.Exec()))
	assert.NotSame(t, before, call.Site().Instance(), "a new signature forces a fresh instance")
	assert.True(t, call.Site().Result("sum").RawEquals(cty.NumberIntVal(5)))

	g.Stop()
	require.True(t, fn.RemoveInputDefinition("c"))
	_, found = call.Port("c")
	assert.True(t, found, "a stopped graph is no longer subscribed")
}

func TestInput_ExposesOneSlot(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	p := testutil.BuildHCL(t, ctx, `
function "pick" {
  input "x" { type = number }
  input "y" { type = string }
  output "picked" { type = number }
  node "function.input" "arg" {
    slot = "x"
  }
  connect {
    from = "arg.value"
    to   = "exit.picked"
  }
  connect {
    from = "entry.out"
    to   = "exit.in"
  }
}
`, modules...)
	fn, _ := p.Function("pick")

	site := graph.NewCallSite(fn, func(id string) cty.Value {
		if id == "x" {
			return cty.StringVal("7")
		}
		return cty.StringVal("ignored")
	})
	t.Cleanup(site.Stop)

	require.True(t, site.Call(ctx, &graph.ExecContext{}))
	assert.True(t, site.Result("picked").RawEquals(cty.NumberIntVal(7)))
}

func TestFactories_RejectBadConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		src  string
		want string
	}{
		{name: "custom without name", src: `graph "g" {
  node "function.custom" "c" {}
}`, want: `attribute "name" is required`},
		{name: "custom with bad params", src: `graph "g" {
  node "function.custom" "c" {
    name   = "c"
    params = { n = "number" }
  }
}`, want: "params must be a list"},
		{name: "custom with duplicate params", src: `graph "g" {
  node "function.custom" "c" {
    name   = "c"
    params = ["n", "n"]
  }
}`, want: `duplicate param "n"`},
		{name: "call to unknown function", src: `graph "g" {
  node "function.call" "c" {
    function = "ghost"
  }
}`, want: `unknown function "ghost"`},
		{name: "return with attributes", src: `graph "g" {
  node "function.return" "r" {
    value = 1
  }
}`, want: `unsupported attribute "value"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx, _ := testutil.Context(t)

			_, err := testutil.BuildErr(t, ctx, tc.src, modules...)
			require.ErrorContains(t, err, tc.want)
		})
	}
}

func TestReturn_FailedCallClearsPreviousValue(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	src := `
function "echo" {
  returns = number
  input "v" { type = any }
  node "function.return" "ret" {}
  connect {
    from = "entry.out"
    to   = "ret.in"
  }
  connect {
    from = "entry.v"
    to   = "ret.value"
  }
}
`
	p := testutil.BuildHCL(t, ctx, src, modules...)
	fn, ok := p.Function("echo")
	require.True(t, ok)

	current := cty.NumberIntVal(5)
	site := graph.NewCallSite(fn, func(string) cty.Value { return current })
	t.Cleanup(site.Stop)
	ec := &graph.ExecContext{}

	require.True(t, site.Call(ctx, ec))
	require.True(t, site.Returned().RawEquals(cty.NumberIntVal(5)))

	current = cty.StringVal("oops")
	require.False(t, site.Call(ctx, ec))
	assert.Equal(t, cty.NilVal, site.Returned(), "a failed return leaves no value from the previous call")

	failures := site.Instance().Graph().Failures()
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], graph.ErrReturnTypeMismatch)
}

const tickingBodyHCL = `
function "ticker" {
  node "event.update" "tick" {}
  node "flow.counter" "count" {}
  connect {
    from = "tick.out"
    to   = "count.in"
  }
}

graph "main" {
  node "function.call" "c" {
    function = "ticker"
  }
}
`

func TestCall_InstanceUpdatesWithOwningGraph(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	p := testutil.BuildHCL(t, ctx, tickingBodyHCL, modules...)
	g := testutil.StartGraph(t, ctx, p, "main", &graph.ExecContext{})

	n, _ := g.Node("c")
	inst := n.(*function.Call).Site().Instance()
	require.NotNil(t, inst)
	require.True(t, inst.Graph().Running())

	for i := 0; i < 3; i++ {
		g.Update()
	}
	assert.True(t, testutil.Output(t, inst.Graph(), "count", "count").RawEquals(cty.NumberIntVal(3)))

	g.Stop()
	g.Update()
	assert.True(t, testutil.Output(t, inst.Graph(), "count", "count").RawEquals(cty.NumberIntVal(3)), "a stopped graph ticks nothing")
}
