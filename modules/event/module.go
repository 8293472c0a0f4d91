// Package event provides the nodes that start flow from graph lifecycle
// events: event.start, event.update and event.stop.
package event

import (
	"github.com/specialistvlad/flowgridgo/internal/flow"
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/model"
	"github.com/specialistvlad/flowgridgo/internal/port"
	"github.com/specialistvlad/flowgridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node types with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode("event.start", simple(func(id string) graph.Node { return NewStart(id) }))
	r.RegisterNode("event.update", simple(func(id string) graph.Node { return NewUpdate(id) }))
	r.RegisterNode("event.stop", simple(func(id string) graph.Node { return NewStop(id) }))
}

func simple(build func(id string) graph.Node) registry.Factory {
	return func(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
		if err := registry.Decode(spec.Attrs, &struct{}{}); err != nil {
			return nil, err
		}
		return build(spec.ID), nil
	}
}

// source is the flow output every event node fires.
type source struct {
	graph.Base
	out *port.FlowOutput
}

func (n *source) RegisterPorts() { n.out = n.AddFlowOutput("out") }

func (n *source) fire() {
	limit := flow.DefaultMaxDepth
	if g := n.Graph(); g != nil {
		limit = g.Options().MaxFlowDepth
	}
	n.out.Call(flow.NewWithLimit(limit))
}

// Start fires once the graph has started.
type Start struct{ source }

func NewStart(id string) *Start {
	return &Start{source{Base: graph.NewBase(id, "event.start")}}
}

func (n *Start) Clone() graph.Node { return &Start{source{Base: n.CloneBase()}} }
func (n *Start) OnGraphStarted(*graph.Graph) { n.fire() }

// Update fires on every tick.
type Update struct{ source }

func NewUpdate(id string) *Update {
	return &Update{source{Base: graph.NewBase(id, "event.update")}}
}

func (n *Update) Clone() graph.Node { return &Update{source{Base: n.CloneBase()}} }
func (n *Update) Update()           { n.fire() }

// Stop fires when the graph stops.
type Stop struct{ source }

func NewStop(id string) *Stop {
	return &Stop{source{Base: graph.NewBase(id, "event.stop")}}
}

func (n *Stop) Clone() graph.Node { return &Stop{source{Base: n.CloneBase()}} }
func (n *Stop) OnGraphStopped(*graph.Graph) { n.fire() }
