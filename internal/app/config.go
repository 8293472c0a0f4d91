package app

import (
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"
)

// MemoryBlackboard selects the ephemeral blackboard. Any other value is a
// directory for the persistent store.
const MemoryBlackboard = "memory"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DefinitionsPath string   // .hcl and .json files
	Graphs          []string // graphs to start, all of them when empty

	// Ticks is the number of ticks to run, 0 runs until cancelled.
	Ticks        int
	TickInterval time.Duration

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	Blackboard   string
	MaxFlowDepth int
	MaxCallDepth int
}

// DefaultConfig returns the values NewConfig falls back to for unset fields.
func DefaultConfig() Config {
	return Config{
		TickInterval: 100 * time.Millisecond,
		LogFormat:    "text",
		LogLevel:     "info",
		Blackboard:   MemoryBlackboard,
		MaxFlowDepth: 1024,
		MaxCallDepth: 256,
	}
}

// NewConfig merges cfg over DefaultConfig and validates the result. Zero
// fields in cfg keep their default.
func NewConfig(cfg Config) (*Config, error) {
	merged := DefaultConfig()
	if err := mergo.Merge(&merged, cfg, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merge configuration: %w", err)
	}

	var errs []error
	if merged.DefinitionsPath == "" {
		errs = append(errs, errors.New("DefinitionsPath is a required configuration field and cannot be empty"))
	}
	if merged.Ticks < 0 {
		errs = append(errs, fmt.Errorf("ticks must not be negative, got %d", merged.Ticks))
	}
	if merged.TickInterval < 0 {
		errs = append(errs, fmt.Errorf("tick interval must not be negative, got %s", merged.TickInterval))
	}
	if _, ok := parseLevel(merged.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("invalid log level %q", merged.LogLevel))
	}
	if merged.LogFormat != "text" && merged.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid log format %q", merged.LogFormat))
	}
	if merged.HealthcheckPort < 0 || merged.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid healthcheck port %d", merged.HealthcheckPort))
	}
	if merged.MaxFlowDepth < 1 || merged.MaxCallDepth < 1 {
		errs = append(errs, errors.New("depth limits must be at least 1"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &merged, nil
}
