package app

import (
	"fmt"

	"github.com/specialistvlad/flowgridgo/internal/blackboard"
	"github.com/specialistvlad/flowgridgo/internal/builder"
	"github.com/specialistvlad/flowgridgo/internal/ctxlog"
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/model"
)

// LoadProgram reads the definitions and builds them into a program.
func (a *App) LoadProgram() error {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Loading definitions...", "definitions_path", a.config.DefinitionsPath)

	doc, err := model.Load(a.ctx, a.config.DefinitionsPath)
	if err != nil {
		return fmt.Errorf("failed to load definitions: %w", err)
	}

	opts := graph.Options{MaxFlowDepth: a.config.MaxFlowDepth, MaxCallDepth: a.config.MaxCallDepth}
	program, err := builder.Build(a.ctx, doc, a.registry, opts)
	if err != nil {
		return fmt.Errorf("failed to build program: %w", err)
	}

	a.program = program
	logger.Info("Definitions loaded successfully.", "graphs", len(program.Graphs), "tasks", len(program.Tasks))
	return nil
}

// OpenBlackboard opens the configured parameter store.
func (a *App) OpenBlackboard() error {
	logger := ctxlog.FromContext(a.ctx)

	if a.config.Blackboard == "" || a.config.Blackboard == MemoryBlackboard {
		logger.Debug("Using in-memory blackboard.")
		a.board = blackboard.NewMemory()
		return nil
	}

	logger.Debug("Opening persistent blackboard.", "path", a.config.Blackboard)
	store, err := blackboard.OpenBadger(a.config.Blackboard, logger)
	if err != nil {
		return err
	}
	a.board = store
	return nil
}

// selectGraphs resolves the configured graph names, keeping document order
// when none are given.
func (a *App) selectGraphs() ([]*graph.Graph, error) {
	if len(a.config.Graphs) == 0 {
		return a.program.Graphs, nil
	}
	out := make([]*graph.Graph, 0, len(a.config.Graphs))
	for _, name := range a.config.Graphs {
		g, ok := a.program.Graph(name)
		if !ok {
			return nil, fmt.Errorf("graph %q is not defined", name)
		}
		out = append(out, g)
	}
	return out, nil
}
