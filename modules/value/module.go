// Package value provides nodes that produce values: value.constant and
// value.expr.
package value

import (
	"fmt"

	"github.com/specialistvlad/flowgridgo/internal/fgexpr"
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/model"
	"github.com/specialistvlad/flowgridgo/internal/port"
	"github.com/specialistvlad/flowgridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node types with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode("value.constant", newConstantFromSpec)
	r.RegisterNode("value.expr", newExprFromSpec)
}

// Constant offers a fixed value.
type Constant struct {
	graph.Base
	value cty.Value
}

// NewConstant creates a constant node. When typ is not cty.NilType the value
// is converted to it.
func NewConstant(id string, v cty.Value, typ cty.Type) (*Constant, error) {
	if typ != cty.NilType {
		conv, err := convert.Convert(v, typ)
		if err != nil {
			return nil, fmt.Errorf("value does not fit type %s: %w", typ.FriendlyName(), err)
		}
		v = conv
	}
	return &Constant{Base: graph.NewBase(id, "value.constant"), value: v}, nil
}

func newConstantFromSpec(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
	var cfg struct {
		Value cty.Value `cty:"value,required"`
		Type  cty.Type  `cty:"type"`
	}
	if err := registry.Decode(spec.Attrs, &cfg); err != nil {
		return nil, err
	}
	return NewConstant(spec.ID, cfg.Value, cfg.Type)
}

func (n *Constant) RegisterPorts() {
	n.AddValueOutput("value", n.value.Type(), func() cty.Value { return n.value })
}

func (n *Constant) Clone() graph.Node {
	return &Constant{Base: n.CloneBase(), value: n.value}
}

// Expr evaluates an expression over its inputs on every pull. Each `in.<name>`
// reference in the expression becomes a dynamic value input.
type Expr struct {
	graph.Base
	expr *fgexpr.Expression
	typ  cty.Type

	inputs map[string]*port.ValueInput
}

// NewExpr compiles src. Its result is converted to typ, or left as is when
// typ is cty.NilType.
func NewExpr(id, src string, typ cty.Type) (*Expr, error) {
	expr, err := fgexpr.Compile(src)
	if err != nil {
		return nil, err
	}
	if typ == cty.NilType {
		typ = cty.DynamicPseudoType
	}
	return &Expr{Base: graph.NewBase(id, "value.expr"), expr: expr, typ: typ}, nil
}

func newExprFromSpec(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
	var cfg struct {
		Expr string   `cty:"expr,required"`
		Type cty.Type `cty:"type"`
	}
	if err := registry.Decode(spec.Attrs, &cfg); err != nil {
		return nil, err
	}
	return NewExpr(spec.ID, cfg.Expr, cfg.Type)
}

func (n *Expr) RegisterPorts() {
	n.inputs = make(map[string]*port.ValueInput)
	for _, name := range n.expr.Inputs() {
		n.inputs[name] = n.AddValueInput(name, cty.DynamicPseudoType)
	}
	n.AddValueOutput("result", n.typ, n.eval)
}

func (n *Expr) Clone() graph.Node {
	return &Expr{Base: n.CloneBase(), expr: n.expr, typ: n.typ}
}

func (n *Expr) eval() cty.Value {
	values := make(map[string]cty.Value, len(n.inputs))
	for name, in := range n.inputs {
		values[name] = in.Value()
	}
	v, err := n.expr.Eval(values)
	if err != nil {
		n.Fail(err)
		return cty.NullVal(n.typ)
	}
	conv, err := convert.Convert(v, n.typ)
	if err != nil {
		n.Fail(fmt.Errorf("result of %q: %w", n.expr.Source(), err))
		return cty.NullVal(n.typ)
	}
	return conv
}
