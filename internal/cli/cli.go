package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/specialistvlad/flowgridgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// graphList collects repeated -graph flags. A single flag may also carry a
// comma-separated list.
type graphList []string

func (g *graphList) String() string { return strings.Join(*g, ",") }

func (g *graphList) Set(v string) error {
	for _, name := range strings.Split(v, ",") {
		if name = strings.TrimSpace(name); name != "" {
			*g = append(*g, name)
		}
	}
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("flowgridgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
FlowGridGo - A tick-driven runtime for node-graph scripts.

Usage:
  flowgridgo [options] [DEFINITIONS_PATH]

Arguments:
  DEFINITIONS_PATH
    Path to a single .hcl/.json file or a directory containing them.

Options:
`)
		flagSet.PrintDefaults()
	}

	defaults := app.DefaultConfig()
	var graphs graphList
	definitionsFlag := flagSet.String("definitions", "", "Path to the definitions file or directory.")
	dFlag := flagSet.String("d", "", "Path to the definitions file or directory (shorthand).")
	flagSet.Var(&graphs, "graph", "Graph to start. Repeat or separate with commas. Defaults to all graphs.")
	ticksFlag := flagSet.Int("ticks", 0, "Number of ticks to run. 0 runs until interrupted.")
	intervalFlag := flagSet.Duration("tick-interval", defaults.TickInterval, "Delay between ticks.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	blackboardFlag := flagSet.String("blackboard", defaults.Blackboard, "Parameter store: 'memory' or a directory for the persistent store.")
	flowDepthFlag := flagSet.Int("max-flow-depth", defaults.MaxFlowDepth, "Maximum nesting of flow calls.")
	callDepthFlag := flagSet.Int("max-call-depth", defaults.MaxCallDepth, "Maximum nesting of function calls.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *definitionsFlag != "" {
		path = *definitionsFlag
	} else if *dFlag != "" {
		path = *dFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Definitions path determined.", "path", path)

	if path == "" {
		slog.Debug("No definitions path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *ticksFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid ticks: must not be negative"}
	}
	if *intervalFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid tick-interval: must not be negative"}
	}
	if *flowDepthFlag < 1 || *callDepthFlag < 1 {
		return nil, false, &ExitError{Code: 2, Message: "invalid depth limit: must be at least 1"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		DefinitionsPath: path,
		Graphs:          graphs,
		Ticks:           *ticksFlag,
		TickInterval:    normalizeInterval(*intervalFlag),
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
		Blackboard:      *blackboardFlag,
		MaxFlowDepth:    *flowDepthFlag,
		MaxCallDepth:    *callDepthFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// normalizeInterval maps an explicit zero interval to the smallest positive
// one, since zero fields take the configured default.
func normalizeInterval(d time.Duration) time.Duration {
	if d == 0 {
		return time.Nanosecond
	}
	return d
}
