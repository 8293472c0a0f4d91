package function

import (
	"fmt"

	"github.com/specialistvlad/flowgridgo/internal/flow"
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/model"
	"github.com/specialistvlad/flowgridgo/internal/port"
	"github.com/specialistvlad/flowgridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// BodyPort is the flow output that runs a custom function's body.
const BodyPort = "body"

// Custom is a function defined inline in a graph and called by name. Each
// parameter is a value output reading the innermost active call, so a body
// that calls itself sees its own arguments.
type Custom struct {
	graph.Base
	name    string
	params  []Param
	returns cty.Type

	body   *port.FlowOutput
	frames [][]cty.Value
}

// NewCustom creates a custom function node. A returns of cty.NilType means
// the function yields no value.
func NewCustom(id, name string, params []Param, returns cty.Type) *Custom {
	return &Custom{
		Base:    graph.NewBase(id, "function.custom"),
		name:    name,
		params:  params,
		returns: returns,
	}
}

func newCustomFromSpec(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
	var cfg struct {
		Name    string    `cty:"name,required"`
		Params  cty.Value `cty:"params"`
		Returns cty.Type  `cty:"returns"`
	}
	cfg.Params = cty.NullVal(cty.DynamicPseudoType)
	if err := registry.Decode(spec.Attrs, &cfg); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("name must not be empty")
	}
	params, err := parseParams(cfg.Params)
	if err != nil {
		return nil, err
	}
	return NewCustom(spec.ID, cfg.Name, params, cfg.Returns), nil
}

// FunctionName implements graph.CallableByName.
func (n *Custom) FunctionName() string { return n.name }

// Params returns the declared parameters.
func (n *Custom) Params() []Param { return append([]Param(nil), n.params...) }

// Depth is the number of calls currently active.
func (n *Custom) Depth() int { return len(n.frames) }

func (n *Custom) RegisterPorts() {
	n.body = n.AddFlowOutput(BodyPort)
	for i, p := range n.params {
		n.AddValueOutput(p.Name, p.Type, func() cty.Value {
			if len(n.frames) == 0 {
				return cty.NullVal(p.Type)
			}
			return n.frames[len(n.frames)-1][i]
		})
	}
}

func (n *Custom) Clone() graph.Node {
	return &Custom{Base: n.CloneBase(), name: n.name, params: n.params, returns: n.returns}
}

// Invoke implements graph.CallableByName. It runs the body with a fresh
// returning flow and yields the returned value, or a typed null when the
// body never returns.
func (n *Custom) Invoke(args []cty.Value) cty.Value {
	if n.body == nil {
		return cty.NullVal(orDynamic(n.returns))
	}
	opts := n.Graph().Options()
	if opts.MaxCallDepth > 0 && len(n.frames) >= opts.MaxCallDepth {
		n.Fail(fmt.Errorf("%w: %q at depth %d", graph.ErrRecursionLimit, n.name, len(n.frames)))
		return cty.NilVal
	}

	frame := make([]cty.Value, len(n.params))
	for i, p := range n.params {
		frame[i] = cty.NullVal(p.Type)
		if i >= len(args) || args[i].Type() == cty.NilType {
			continue
		}
		v, err := convert.Convert(args[i], p.Type)
		if err != nil {
			n.Fail(fmt.Errorf("argument %q of %q: %w", p.Name, n.name, err))
			continue
		}
		frame[i] = v
	}
	n.frames = append(n.frames, frame)
	defer func() { n.frames = n.frames[:len(n.frames)-1] }()

	result := cty.NullVal(orDynamic(n.returns))
	f := flow.NewWithLimit(opts.MaxFlowDepth).WithReturn(func(v cty.Value) { result = v }, n.returns)
	n.body.Call(f)
	return result
}
