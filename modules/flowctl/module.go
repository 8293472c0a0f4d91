// Package flowctl provides control-flow nodes: flow.sequence, flow.branch
// and flow.counter.
package flowctl

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

// Register registers the node types with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode("flow.sequence", func(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
		cfg := struct {
			Count int `cty:"count"`
		}{Count: 2}
		if err := registry.Decode(spec.Attrs, &cfg); err != nil {
			return nil, err
		}
		if cfg.Count < 1 {
			return nil, fmt.Errorf("count must be at least 1, got %d", cfg.Count)
		}
		return NewSequence(spec.ID, cfg.Count), nil
	})
	r.RegisterNode("flow.branch", func(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
		if err := registry.Decode(spec.Attrs, &struct{}{}); err != nil {
			return nil, err
		}
		return NewBranch(spec.ID), nil
	})
	r.RegisterNode("flow.counter", func(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
		if err := registry.Decode(spec.Attrs, &struct{}{}); err != nil {
			return nil, err
		}
		return NewCounter(spec.ID), nil
	})
}

// Sequence passes control to each of its outputs in order. Outputs are named
// then0, then1, and so on.
type Sequence struct {
	graph.Base
	count int
	outs  []*port.FlowOutput
}

func NewSequence(id string, count int) *Sequence {
	return &Sequence{Base: graph.NewBase(id, "flow.sequence"), count: count}
}

// OutPort names the i-th output of a sequence.
func OutPort(i int) string { return fmt.Sprintf("then%d", i) }

func (n *Sequence) RegisterPorts() {
	n.AddFlowInput("in", func(f *flow.Flow) {
		for _, out := range n.outs {
			out.Call(f)
		}
	})
	n.outs = n.outs[:0]
	for i := 0; i < n.count; i++ {
		n.outs = append(n.outs, n.AddFlowOutput(OutPort(i)))
	}
}

func (n *Sequence) Clone() graph.Node {
	return &Sequence{Base: n.CloneBase(), count: n.count}
}

// Branch passes control to `true` or `false` depending on its condition. A
// null condition counts as false.
type Branch struct {
	graph.Base
}

func NewBranch(id string) *Branch {
	return &Branch{Base: graph.NewBase(id, "flow.branch")}
}

func (n *Branch) RegisterPorts() {
	cond := n.AddValueInput("condition", cty.Bool)
	yes := n.AddFlowOutput("true")
	no := n.AddFlowOutput("false")
	n.AddFlowInput("in", func(f *flow.Flow) {
		if v := cond.Value(); !v.IsNull() && v.True() {
			yes.Call(f)
			return
		}
		no.Call(f)
	})
}

func (n *Branch) Clone() graph.Node { return &Branch{Base: n.CloneBase()} }

// Counter counts the flows passing through it. The count resets when the
// graph starts.
type Counter struct {
	graph.Base
	n int64
}

func NewCounter(id string) *Counter {
	return &Counter{Base: graph.NewBase(id, "flow.counter")}
}

func (n *Counter) RegisterPorts() {
	out := n.AddFlowOutput("out")
	n.AddFlowInput("in", func(f *flow.Flow) {
		n.n++
		out.Call(f)
	})
	n.AddValueOutput("count", cty.Number, func() cty.Value { return cty.NumberIntVal(n.n) })
}

func (n *Counter) Clone() graph.Node { return &Counter{Base: n.CloneBase()} }

func (n *Counter) OnGraphStarted(*graph.Graph) { n.n = 0 }
