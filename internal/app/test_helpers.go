package app

import (
	"os"
	"testing"

	"github.com/specialistvlad/flowgridgo/internal/registry"
	"github.com/specialistvlad/flowgridgo/internal/testutil"
)

// SetupAppTest creates a new app instance with debug logging for system
// testing. Set FG_TEST_LOGS=true to dump the output after the test.
func SetupAppTest(t *testing.T, config *Config, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	out := &testutil.SafeBuffer{}
	config.LogLevel = "debug"
	testApp := NewApp(out, config, modules...)

	t.Cleanup(func() {
		if os.Getenv("FG_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), out.String())
		}
	})

	return testApp, out
}
