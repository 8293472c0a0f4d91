package builder

import (
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/task"
)

// Program is the primary artifact of the builder: every graph, function and
// task of a document, ready to be started.
type Program struct {
	// Graphs and Tasks keep document order.
	Graphs []*graph.Graph
	Tasks  []*task.Task

	functions map[string]*graph.Function
	// order is the build order of the functions, callees first.
	order []string
	opts  graph.Options
}

func newProgram(opts graph.Options) *Program {
	return &Program{functions: make(map[string]*graph.Function), opts: opts}
}

// Graph returns a top-level graph by name.
func (p *Program) Graph(name string) (*graph.Graph, bool) {
	for _, g := range p.Graphs {
		if g.Name() == name {
			return g, true
		}
	}
	return nil, false
}

// Function returns a function definition by name.
func (p *Program) Function(name string) (*graph.Function, bool) {
	fn, ok := p.functions[name]
	return fn, ok
}

// Functions returns the definitions in build order.
func (p *Program) Functions() []*graph.Function {
	out := make([]*graph.Function, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.functions[name])
	}
	return out
}

// Task returns a task by name.
func (p *Program) Task(name string) (*task.Task, bool) {
	for _, t := range p.Tasks {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// Options are the limits the program was built with.
func (p *Program) Options() graph.Options { return p.opts }

// Close releases the tasks' live instances.
func (p *Program) Close() {
	for _, t := range p.Tasks {
		t.Close()
	}
}
