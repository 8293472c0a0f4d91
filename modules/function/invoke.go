package function

import (
	"fmt"

	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/model"
	"github.com/specialistvlad/flowgridgo/internal/port"
	"github.com/specialistvlad/flowgridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ResultPort is the value output of function.invoke.
const ResultPort = "result"

// Invoke calls a named function of its own graph whenever its result is
// pulled. The arguments are pulled first, in declaration order.
type Invoke struct {
	graph.Base
	name    string
	args    []string
	returns cty.Type

	inputs []*port.ValueInput
}

// NewInvoke creates a call-by-name node with one dynamic input per argument
// name.
func NewInvoke(id, name string, args []string, returns cty.Type) *Invoke {
	return &Invoke{Base: graph.NewBase(id, "function.invoke"), name: name, args: args, returns: orDynamic(returns)}
}

func newInvokeFromSpec(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
	var cfg struct {
		Name    string   `cty:"name,required"`
		Args    []string `cty:"args"`
		Returns cty.Type `cty:"returns"`
	}
	if err := registry.Decode(spec.Attrs, &cfg); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("name must not be empty")
	}
	return NewInvoke(spec.ID, cfg.Name, cfg.Args, cfg.Returns), nil
}

func (n *Invoke) RegisterPorts() {
	n.inputs = n.inputs[:0]
	for _, a := range n.args {
		n.inputs = append(n.inputs, n.AddValueInput(a, cty.DynamicPseudoType))
	}
	n.AddValueOutput(ResultPort, n.returns, n.call)
}

func (n *Invoke) Clone() graph.Node {
	return &Invoke{Base: n.CloneBase(), name: n.name, args: n.args, returns: n.returns}
}

func (n *Invoke) call() cty.Value {
	args := make([]cty.Value, len(n.inputs))
	for i, in := range n.inputs {
		args[i] = in.Value()
	}
	v := n.Graph().CallFunction(n.name, args...)
	if v.Type() == cty.NilType {
		return cty.NullVal(n.returns)
	}
	conv, err := convert.Convert(v, n.returns)
	if err != nil {
		n.Fail(fmt.Errorf("result of %q: %w", n.name, err))
		return cty.NullVal(n.returns)
	}
	return conv
}
