package flowctl_test

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/testutil"
	"github.com/specialistvlad/flowgridgo/modules/event"
	"github.com/specialistvlad/flowgridgo/modules/flowctl"
	"github.com/specialistvlad/flowgridgo/modules/print"
	"github.com/specialistvlad/flowgridgo/modules/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestSequenceAndBranch(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		condition string
		want      string
	}{
		{name: "true branch", condition: "true", want: "first = \"yes\"\nsecond = \"after\"\n"},
		{name: "false branch", condition: "false", want: "first = \"no\"\nsecond = \"after\"\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx, _ := testutil.Context(t)

			src := `
graph "main" {
  node "event.start" "go" {}
  node "flow.sequence" "seq" {}
  node "flow.branch" "if" {}
  defaults "if" { condition = ` + tc.condition + ` }
  node "debug.print" "yes" {
    label = "first"
  }
  defaults "yes" { value = "yes" }
  node "debug.print" "no" {
    label = "first"
  }
  defaults "no" { value = "no" }
  node "debug.print" "after" {
    label = "second"
  }
  defaults "after" { value = "after" }

  connect {
    from = "go.out"
    to   = "seq.in"
  }
  connect {
    from = "seq.then0"
    to   = "if.in"
  }
  connect {
    from = "if.true"
    to   = "yes.in"
  }
  connect {
    from = "if.false"
    to   = "no.in"
  }
  connect {
    from = "seq.then1"
    to   = "after.in"
  }
}
`
			var out bytes.Buffer
			p := testutil.BuildHCL(t, ctx, src, &event.Module{}, &flowctl.Module{}, &print.Module{}, &value.Module{})
			testutil.StartGraph(t, ctx, p, "main", &graph.ExecContext{Agent: &out})
			assert.Equal(t, tc.want, out.String())
		})
	}
}

func TestCounter_CountsAndResets(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	p := testutil.BuildHCL(t, ctx, `
graph "main" {
  node "event.update" "tick" {}
  node "flow.counter" "n" {}
  connect {
    from = "tick.out"
    to   = "n.in"
  }
}
`, &event.Module{}, &flowctl.Module{})
	g := testutil.StartGraph(t, ctx, p, "main", &graph.ExecContext{})

	g.Update()
	g.Update()
	g.Update()

	readCount := func() cty.Value { return testutil.Output(t, g, "n", "count") }
	assert.True(t, readCount().RawEquals(cty.NumberIntVal(3)))

	g.Stop()
	require.NoError(t, g.Start(ctx, g.Exec()))
	assert.True(t, readCount().RawEquals(cty.NumberIntVal(0)))
}

func TestSequence_RejectsZeroCount(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	_, err := testutil.BuildErr(t, ctx, `
graph "main" {
  node "flow.sequence" "seq" {
    count = 0
  }
}
`, &flowctl.Module{})
	require.ErrorContains(t, err, "count must be at least 1")
}
