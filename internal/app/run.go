package app

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/flowgridgo/internal/ctxlog"
	"github.com/specialistvlad/flowgridgo/internal/graph"
)

// Run loads the program, starts the selected graphs and drives them until
// the configured number of ticks has run or ctx is cancelled. Node failures
// are logged and never end the run.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger
	logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	if err := a.LoadProgram(); err != nil {
		return err
	}
	defer a.program.Close()

	graphs, err := a.selectGraphs()
	if err != nil {
		return err
	}

	if err := a.OpenBlackboard(); err != nil {
		return err
	}
	defer a.closeBlackboard()

	a.ec = &graph.ExecContext{Agent: a, Blackboard: a.board}
	defer a.stopGraphs()
	if err := a.startGraphs(graphs); err != nil {
		return err
	}

	if len(a.running) == 0 && len(a.program.Tasks) == 0 {
		logger.Warn("No graphs or tasks to run, execution not required.")
		return nil
	}

	logger.Info("🚀 Starting tick loop...", "graphs", len(a.running), "tasks", len(a.program.Tasks), "ticks", a.config.Ticks)
	a.loop()
	logger.Info("🏁 Tick loop finished.", "ticks", a.Ticks())

	logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) startGraphs(graphs []*graph.Graph) error {
	for _, g := range graphs {
		if err := g.Start(a.ctx, a.ec); err != nil {
			return fmt.Errorf("failed to start graph %q: %w", g.Name(), err)
		}
		a.running = append(a.running, g)
		a.logger.Debug("Graph started.", "graph", g.Name())
	}
	return nil
}

// stopGraphs stops the running graphs in reverse start order and reports
// the failures each one collected.
func (a *App) stopGraphs() {
	for i := len(a.running) - 1; i >= 0; i-- {
		g := a.running[i]
		g.Stop()
		if failures := g.Failures(); len(failures) > 0 {
			a.logger.Warn("Graph recorded node failures.", "graph", g.Name(), "count", len(failures))
		}
	}
	a.running = nil
}

func (a *App) closeBlackboard() {
	if a.board == nil {
		return
	}
	if err := a.board.Close(); err != nil {
		a.logger.Error("Blackboard close failed.", "error", err)
	}
}

func (a *App) loop() {
	limit := uint64(a.config.Ticks)
	var ticker *time.Ticker
	if a.config.TickInterval > 0 {
		ticker = time.NewTicker(a.config.TickInterval)
		defer ticker.Stop()
	}

	for n := uint64(1); limit == 0 || n <= limit; n++ {
		if n > 1 && !a.wait(ticker) {
			a.logger.Info("Tick loop cancelled.", "ticks", a.Ticks())
			return
		}
		a.step(n)
	}
}

// wait blocks until the next tick is due. It returns false once the run's
// context is done.
func (a *App) wait(ticker *time.Ticker) bool {
	if ticker == nil {
		return a.ctx.Err() == nil
	}
	select {
	case <-a.ctx.Done():
		return false
	case <-ticker.C:
		return true
	}
}

// step runs one tick: every running graph is updated, then every due task
// runs against the shared blackboard.
func (a *App) step(n uint64) {
	a.tick.Store(n)
	for _, g := range a.running {
		g.Update()
	}
	for _, t := range a.program.Tasks {
		if !t.Due(n) {
			continue
		}
		ok := t.Run(a.ctx, a.ec)
		a.logger.Debug("Task ran.", "task", t.Name(), "kind", t.Kind().String(), "tick", n, "ok", ok)
	}
}
