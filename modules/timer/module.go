// Package timer provides timer.every, which fires on every n-th tick.
package timer

import (
	"fmt"

	"github.com/specialistvlad/flowgridgo/internal/flow"
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/model"
	"github.com/specialistvlad/flowgridgo/internal/port"
	"github.com/specialistvlad/flowgridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node type with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode("timer.every", func(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
		cfg := struct {
			Ticks int `cty:"ticks"`
		}{Ticks: 1}
		if err := registry.Decode(spec.Attrs, &cfg); err != nil {
			return nil, err
		}
		if cfg.Ticks < 1 {
			return nil, fmt.Errorf("ticks must be at least 1, got %d", cfg.Ticks)
		}
		return NewEvery(spec.ID, cfg.Ticks), nil
	})
}

// Every counts ticks and fires `out` on every n-th one. `fired` is the number
// of times it has fired since the graph started.
type Every struct {
	graph.Base
	ticks int

	elapsed int
	fired   int64
	out     *port.FlowOutput
}

func NewEvery(id string, ticks int) *Every {
	return &Every{Base: graph.NewBase(id, "timer.every"), ticks: ticks}
}

func (n *Every) RegisterPorts() {
	n.out = n.AddFlowOutput("out")
	n.AddValueOutput("fired", cty.Number, func() cty.Value { return cty.NumberIntVal(n.fired) })
}

func (n *Every) Clone() graph.Node { return &Every{Base: n.CloneBase(), ticks: n.ticks} }

func (n *Every) OnGraphStarted(*graph.Graph) {
	n.elapsed, n.fired = 0, 0
}

// Update implements graph.Updatable.
func (n *Every) Update() {
	n.elapsed++
	if n.elapsed < n.ticks {
		return
	}
	n.elapsed = 0
	n.fired++
	n.out.Call(flow.NewWithLimit(n.Graph().Options().MaxFlowDepth))
}
