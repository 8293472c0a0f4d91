package arith_test

import (
	"testing"

	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/testutil"
	"github.com/specialistvlad/flowgridgo/modules/arith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func result(t *testing.T, g *graph.Graph, id string) cty.Value {
	t.Helper()
	return testutil.Output(t, g, id, "result")
}

func TestBinaryAndCompare(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		node  string
		attrs string
		a, b  string
		want  cty.Value
	}{
		{name: "add", node: "math.add", a: "2", b: "3", want: cty.NumberIntVal(5)},
		{name: "subtract", node: "math.subtract", a: "2", b: "3", want: cty.NumberIntVal(-1)},
		{name: "multiply", node: "math.multiply", a: "4", b: "2.5", want: cty.NumberIntVal(10)},
		{name: "divide", node: "math.divide", a: "9", b: "3", want: cty.NumberIntVal(3)},
		{name: "string operand converted", node: "math.add", a: `"40"`, b: "2", want: cty.NumberIntVal(42)},
		{name: "equal", node: "math.compare", a: `"x"`, b: `"x"`, want: cty.True},
		{name: "not equal", node: "math.compare", attrs: `op = "!="`, a: "1", b: "2", want: cty.True},
		{name: "less", node: "math.compare", attrs: `op = "<"`, a: "1", b: "2", want: cty.True},
		{name: "greater or equal", node: "math.compare", attrs: `op = ">="`, a: "1", b: "2", want: cty.False},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx, _ := testutil.Context(t)

			src := `
graph "main" {
  node "` + tc.node + `" "op" {
    ` + tc.attrs + `
  }
  defaults "op" {
    a = ` + tc.a + `
    b = ` + tc.b + `
  }
}
`
			p := testutil.BuildHCL(t, ctx, src, &arith.Module{})
			g := testutil.StartGraph(t, ctx, p, "main", &graph.ExecContext{})

			got := result(t, g, "op")
			assert.True(t, got.Equals(tc.want).True(), "got %#v", got)
			assert.Empty(t, g.Failures())
		})
	}
}

func TestBinary_NullAndDivisionByZero(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	p := testutil.BuildHCL(t, ctx, `
graph "main" {
  node "math.add" "missing" {}
  defaults "missing" { a = 1 }
  node "math.divide" "zero" {}
  defaults "zero" {
    a = 1
    b = 0
  }
}
`, &arith.Module{})
	g := testutil.StartGraph(t, ctx, p, "main", &graph.ExecContext{})

	assert.True(t, result(t, g, "missing").IsNull())
	assert.Empty(t, g.Failures(), "a null operand is not a failure")

	assert.True(t, result(t, g, "zero").IsNull())
	failures := g.Failures()
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], arith.ErrDivisionByZero)
}

func TestCompare_UnknownOperator(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	_, err := testutil.BuildErr(t, ctx, `
graph "main" {
  node "math.compare" "c" {
    op = "<>"
  }
}
`, &arith.Module{})
	require.ErrorContains(t, err, `unsupported comparison "<>"`)
}
