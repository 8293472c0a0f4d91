package value_test

import (
	"testing"

	"github.com/specialistvlad/flowgridgo/internal/fgexpr"
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/testutil"
	"github.com/specialistvlad/flowgridgo/modules/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestConstant(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		attrs string
		want  cty.Value
	}{
		{name: "as written", attrs: `value = "7"`, want: cty.StringVal("7")},
		{name: "converted", attrs: "value = \"7\"\n    type = number", want: cty.NumberIntVal(7)},
		{name: "collection", attrs: `value = ["a", "b"]`, want: cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")})},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx, _ := testutil.Context(t)

			p := testutil.BuildHCL(t, ctx, `
graph "main" {
  node "value.constant" "c" {
    `+tc.attrs+`
  }
}
`, &value.Module{})
			g := testutil.StartGraph(t, ctx, p, "main", &graph.ExecContext{})
			got := testutil.Output(t, g, "c", "value")
			assert.True(t, got.RawEquals(tc.want), "got %#v", got)
		})
	}
}

func TestConstant_RejectsUnconvertibleValue(t *testing.T) {
	t.Parallel()

	_, err := value.NewConstant("c", cty.StringVal("seven"), cty.Number)
	require.ErrorContains(t, err, "value does not fit type number")
}

func TestExpr_ReadsInputsOnEveryPull(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	p := testutil.BuildHCL(t, ctx, `
graph "main" {
  node "value.expr" "e" {
    expr = "in.a * 2 + in.b"
    type = string
  }
  defaults "e" {
    a = 20
    b = 2
  }
}
`, &value.Module{})
	g := testutil.StartGraph(t, ctx, p, "main", &graph.ExecContext{})

	got := testutil.Output(t, g, "e", "result")
	assert.True(t, got.RawEquals(cty.StringVal("42")), "got %#v", got)

	n, ok := g.Node("e")
	require.True(t, ok)
	n.SetInputDefault("b", cty.NumberIntVal(10))
	got = testutil.Output(t, g, "e", "result")
	assert.True(t, got.RawEquals(cty.StringVal("50")), "got %#v", got)
	assert.Empty(t, g.Failures())
}

func TestExpr_EvaluationFailureIsReported(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	p := testutil.BuildHCL(t, ctx, `
graph "main" {
  node "value.expr" "e" {
    expr = "in.x + 1"
    type = number
  }
}
`, &value.Module{})
	g := testutil.StartGraph(t, ctx, p, "main", &graph.ExecContext{})

	got := testutil.Output(t, g, "e", "result")
	assert.True(t, got.IsNull())
	assert.Equal(t, cty.Number, got.Type())

	failures := g.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "e", failures[0].NodeID)
}

func TestExpr_CompileErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		src  string
		want error
	}{
		{name: "foreign variable", src: "var.x", want: fgexpr.ErrUnknownVariable},
		{name: "unknown function", src: "shout(in.x)", want: fgexpr.ErrUnknownFunction},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx, _ := testutil.Context(t)

			_, err := testutil.BuildErr(t, ctx, `
graph "main" {
  node "value.expr" "e" {
    expr = "`+tc.src+`"
  }
}
`, &value.Module{})
			require.ErrorIs(t, err, tc.want)
		})
	}
}
