package system

import (
	"context"
	"testing"

	"github.com/specialistvlad/flowgridgo/internal/app"
	"github.com/specialistvlad/flowgridgo/internal/testutil"
	"github.com/stretchr/testify/require"
)

const conditionHCL = `
graph "clock" {
  node "timer.every" "every" {
    ticks = 2
  }
  node "blackboard.set" "publish" {
    key = "fired"
  }
  connect {
    from = "every.out"
    to   = "publish.in"
  }
  connect {
    from = "every.fired"
    to   = "publish.value"
  }
}

function "ready" {
  input "fired" { type = number }

  node "math.compare" "enough" {
    op = ">="
  }
  defaults "enough" { b = 2 }
  connect {
    from = "entry.fired"
    to   = "enough.a"
  }
  connect {
    from = "enough.result"
    to   = "exit.result"
  }
  connect {
    from = "entry.out"
    to   = "exit.in"
  }
}

task "ready" {
  kind     = "condition"
  function = "ready"
}
`

// Test for: a condition task reading a parameter another graph publishes
func TestScripting_ConditionTaskSeesGraphWrites(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	defs := testutil.WriteFiles(t, map[string]string{"clock.hcl": conditionHCL})
	cfg, err := app.NewConfig(app.Config{DefinitionsPath: defs, Ticks: 4, TickInterval: 1})
	require.NoError(t, err)
	testApp, out := app.SetupAppTest(t, cfg)

	// --- Act ---
	err = testApp.Run(context.Background())

	// --- Assert ---
	// The timer publishes on ticks 2 and 4, and graphs update before tasks.
	require.NoError(t, err)
	testutil.AssertLogContains(t, out,
		"task=ready kind=condition tick=1 ok=false",
		"task=ready kind=condition tick=2 ok=false",
		"task=ready kind=condition tick=3 ok=false",
		"task=ready kind=condition tick=4 ok=true",
	)
}
