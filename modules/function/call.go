package function

import (
	"context"
	"fmt"

	"github.com/specialistvlad/flowgridgo/internal/flow"
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/model"
	"github.com/specialistvlad/flowgridgo/internal/port"
	"github.com/specialistvlad/flowgridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Fixed ports of function.call. Signature slots with these ids are not
// exposed.
const (
	CallInPort     = "in"
	CallOutPort    = "out"
	CallOKPort     = "ok"
	CallReturnPort = "return"
)

// Call wraps one call site of a function definition. The callee's inputs
// and outputs appear as the node's value ports and follow signature changes.
type Call struct {
	graph.Base
	fn   *graph.Function
	site *graph.CallSite

	inputs map[string]*port.ValueInput
	out    *port.FlowOutput
	cancel func()
}

// NewCall creates a call node for fn.
func NewCall(id string, fn *graph.Function) *Call {
	n := &Call{Base: graph.NewBase(id, "function.call"), fn: fn}
	n.site = graph.NewCallSite(fn, n.argument)
	return n
}

func newCallFromSpec(spec *model.NodeSpec, env registry.Env) (graph.Node, error) {
	var cfg struct {
		Function string `cty:"function,required"`
	}
	if err := registry.Decode(spec.Attrs, &cfg); err != nil {
		return nil, err
	}
	fn, ok := env.Function(cfg.Function)
	if !ok {
		return nil, fmt.Errorf("unknown function %q", cfg.Function)
	}
	return NewCall(spec.ID, fn), nil
}

// Site exposes the node's call site.
func (n *Call) Site() *graph.CallSite { return n.site }

func (n *Call) RegisterPorts() {
	n.AddFlowInput(CallInPort, n.call)
	n.out = n.AddFlowOutput(CallOutPort)
	n.AddValueOutput(CallOKPort, cty.Bool, func() cty.Value { return cty.BoolVal(n.site.OK()) })
	if rt := n.fn.ReturnType(); rt != cty.NilType {
		n.AddValueOutput(CallReturnPort, rt, func() cty.Value {
			v := n.site.Returned()
			if v.Type() == cty.NilType {
				return cty.NullVal(rt)
			}
			return v
		})
	}

	n.inputs = make(map[string]*port.ValueInput)
	for _, def := range n.fn.Inputs() {
		if !n.free(def) {
			continue
		}
		in := port.NewValueInput(def.ID, def.Name, def.Type)
		n.AddPort(in)
		n.inputs[def.ID] = in
	}
	for _, def := range n.fn.Outputs() {
		if !n.free(def) {
			continue
		}
		id := def.ID
		n.AddPort(port.NewValueOutput(id, def.Name, def.Type, func() cty.Value { return n.site.Result(id) }))
	}
}

func (n *Call) Clone() graph.Node {
	c := &Call{Base: n.CloneBase(), fn: n.fn}
	c.site = graph.NewCallSite(n.fn, c.argument)
	return c
}

// StartNested implements graph.Nested.
func (n *Call) StartNested(ctx context.Context, ec *graph.ExecContext) error {
	return n.site.Start(ctx, ec)
}

// UpdateNested implements graph.Nested.
func (n *Call) UpdateNested() { n.site.Update() }

// StopNested implements graph.Nested.
func (n *Call) StopNested() { n.site.Stop() }

// OnSignatureChanged rebinds the owning graph so the ports follow the
// callee's signature.
func (n *Call) OnSignatureChanged() {
	if g := n.Graph(); g != nil {
		g.Rebind()
	}
}

func (n *Call) OnGraphStarted(*graph.Graph) {
	n.cancel = n.fn.Subscribe(n.OnSignatureChanged)
}

func (n *Call) OnGraphStopped(*graph.Graph) {
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
}

func (n *Call) call(f *flow.Flow) {
	ok := n.site.Call(n.Context(), n.Exec())
	n.Logger().Debug("Function called.", "function", n.fn.Name(), "ok", ok)
	n.out.Call(f)
}

func (n *Call) argument(id string) cty.Value {
	in, ok := n.inputs[id]
	if !ok {
		return cty.NilVal
	}
	return in.Value()
}

func (n *Call) free(def graph.PortDefinition) bool {
	if _, taken := n.Port(def.ID); taken {
		n.Logger().Warn("Signature slot hidden by another port.", "function", n.fn.Name(), "slot", def.ID)
		return false
	}
	return true
}
