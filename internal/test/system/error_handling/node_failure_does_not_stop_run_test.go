package system

import (
	"context"
	"strings"
	"testing"

	"github.com/specialistvlad/flowgridgo/internal/app"
	"github.com/specialistvlad/flowgridgo/internal/testutil"
	"github.com/stretchr/testify/require"
)

const failingHCL = `
graph "main" {
  node "event.update" "tick" {}
  node "math.divide" "div" {}
  defaults "div" {
    a = 1
    b = 0
  }
  node "debug.print" "show" {}
  connect {
    from = "tick.out"
    to   = "show.in"
  }
  connect {
    from = "div.result"
    to   = "show.value"
  }
}
`

// Test for: node failures are reported and the tick loop keeps going
func TestErrorHandling_NodeFailureDoesNotStopRun(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	defs := testutil.WriteFiles(t, map[string]string{"main.hcl": failingHCL})
	cfg, err := app.NewConfig(app.Config{DefinitionsPath: defs, Ticks: 3, TickInterval: 1})
	require.NoError(t, err)
	testApp, out := app.SetupAppTest(t, cfg)

	// --- Act ---
	err = testApp.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, uint64(3), testApp.Ticks())
	logs := out.String()
	require.Equal(t, 3, strings.Count(logs, "show = null\n"), "flow continues past the failing value")
	require.Equal(t, 3, strings.Count(logs, "error=\"division by zero\""))
	testutil.AssertLogContains(t, out, "Graph recorded node failures.", "count=3")
}
