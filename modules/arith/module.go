// Package arith provides the math.* nodes: binary arithmetic on numbers and
// comparison.
package arith

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/model"
	"github.com/specialistvlad/flowgridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// ErrDivisionByZero is reported by math.divide.
var ErrDivisionByZero = errors.New("division by zero")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Op computes a binary operation. A non-nil error is reported through the
// node's failure hook and the result reads as null.
type Op func(a, b cty.Value) (cty.Value, error)

var ops = map[string]Op{
	"math.add":      func(a, b cty.Value) (cty.Value, error) { return a.Add(b), nil },
	"math.subtract": func(a, b cty.Value) (cty.Value, error) { return a.Subtract(b), nil },
	"math.multiply": func(a, b cty.Value) (cty.Value, error) { return a.Multiply(b), nil },
	"math.divide": func(a, b cty.Value) (cty.Value, error) {
		if b.Equals(cty.Zero).True() {
			return cty.NilVal, ErrDivisionByZero
		}
		return a.Divide(b), nil
	},
}

// Register registers the node types with the registry.
func (m *Module) Register(r *registry.Registry) {
	for name, op := range ops {
		r.RegisterNode(name, func(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
			if err := registry.Decode(spec.Attrs, &struct{}{}); err != nil {
				return nil, err
			}
			return NewBinary(spec.ID, name, op), nil
		})
	}
	r.RegisterNode("math.compare", func(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
		cfg := struct {
			Op string `cty:"op"`
		}{Op: "=="}
		if err := registry.Decode(spec.Attrs, &cfg); err != nil {
			return nil, err
		}
		return NewCompare(spec.ID, cfg.Op)
	})
}

// Binary applies an Op to its `a` and `b` inputs on every pull of `result`.
// A null operand yields a null result.
type Binary struct {
	graph.Base
	op Op
}

func NewBinary(id, typ string, op Op) *Binary {
	return &Binary{Base: graph.NewBase(id, typ), op: op}
}

func (n *Binary) RegisterPorts() {
	a := n.AddValueInput("a", cty.Number)
	b := n.AddValueInput("b", cty.Number)
	n.AddValueOutput("result", cty.Number, func() cty.Value {
		av, bv := a.Value(), b.Value()
		if av.IsNull() || bv.IsNull() {
			return cty.NullVal(cty.Number)
		}
		v, err := n.op(av, bv)
		if err != nil {
			n.Fail(err)
			return cty.NullVal(cty.Number)
		}
		return v
	})
}

func (n *Binary) Clone() graph.Node {
	return &Binary{Base: n.CloneBase(), op: n.op}
}

var comparisons = map[string]func(a, b cty.Value) cty.Value{
	"==": func(a, b cty.Value) cty.Value { return a.Equals(b) },
	"!=": func(a, b cty.Value) cty.Value { return a.Equals(b).Not() },
	"<":  func(a, b cty.Value) cty.Value { return a.LessThan(b) },
	"<=": func(a, b cty.Value) cty.Value { return a.LessThanOrEqualTo(b) },
	">":  func(a, b cty.Value) cty.Value { return a.GreaterThan(b) },
	">=": func(a, b cty.Value) cty.Value { return a.GreaterThanOrEqualTo(b) },
}

// Compare compares two numbers. Equality also works on other values of the
// same type.
type Compare struct {
	graph.Base
	op string
}

func NewCompare(id, op string) (*Compare, error) {
	if _, ok := comparisons[op]; !ok {
		return nil, fmt.Errorf("unsupported comparison %q", op)
	}
	return &Compare{Base: graph.NewBase(id, "math.compare"), op: op}, nil
}

func (n *Compare) ordered() bool { return n.op != "==" && n.op != "!=" }

func (n *Compare) RegisterPorts() {
	typ := cty.DynamicPseudoType
	if n.ordered() {
		typ = cty.Number
	}
	a := n.AddValueInput("a", typ)
	b := n.AddValueInput("b", typ)
	n.AddValueOutput("result", cty.Bool, func() cty.Value {
		av, bv := a.Value(), b.Value()
		if n.ordered() && (av.IsNull() || bv.IsNull()) {
			return cty.False
		}
		v := comparisons[n.op](av, bv)
		if !v.IsKnown() || v.IsNull() {
			return cty.False
		}
		return v
	})
}

func (n *Compare) Clone() graph.Node {
	return &Compare{Base: n.CloneBase(), op: n.op}
}
