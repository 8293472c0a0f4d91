package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"sync/atomic"

	"github.com/specialistvlad/flowgridgo/internal/blackboard"
	"github.com/specialistvlad/flowgridgo/internal/builder"
	"github.com/specialistvlad/flowgridgo/internal/ctxlog"
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle. It is also the agent every started graph is bound to.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	ctx      context.Context
	config   *Config
	registry *registry.Registry

	program *builder.Program
	board   blackboard.Store
	ec      *graph.ExecContext
	running []*graph.Graph

	tick       atomic.Uint64
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Without modules, the compiled-in core modules are registered.
func NewApp(outW io.Writer, config *Config, modules ...registry.Module) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.NewWithModules(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "node_types", len(reg.Types()))

	return &App{
		outW:     outW,
		logger:   logger,
		ctx:      ctxlog.WithLogger(context.Background(), logger),
		config:   config,
		registry: reg,
	}
}

// Component exposes the app's output as the io.Writer component of every
// graph it runs.
func (a *App) Component(t reflect.Type) (any, bool) {
	if t == reflect.TypeFor[io.Writer]() {
		return a.outW, true
	}
	return nil, false
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry { return a.registry }

// Program returns the loaded program, or nil before Run has loaded it.
func (a *App) Program() *builder.Program { return a.program }

// Blackboard returns the open parameter store, or nil outside of Run.
func (a *App) Blackboard() blackboard.Store { return a.board }

// Ticks returns the number of ticks run so far. It is safe to call from any
// goroutine.
func (a *App) Ticks() uint64 { return a.tick.Load() }
