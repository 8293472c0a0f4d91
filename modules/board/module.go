// Package board provides blackboard.get and blackboard.set, which read and
// write the execution context's blackboard.
package board

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/flowgridgo/internal/blackboard"
	"github.com/specialistvlad/flowgridgo/internal/flow"
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/model"
	"github.com/specialistvlad/flowgridgo/internal/port"
	"github.com/specialistvlad/flowgridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ErrNoBlackboard is reported when the graph runs without a blackboard.
var ErrNoBlackboard = errors.New("no blackboard bound to the execution context")

// Module implements the registry.Module interface for this package.
type Module struct{}

type config struct {
	Key  string   `cty:"key,required"`
	Type cty.Type `cty:"type"`
}

// Register registers the node types with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode("blackboard.get", func(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
		var cfg config
		if err := registry.Decode(spec.Attrs, &cfg); err != nil {
			return nil, err
		}
		return NewGet(spec.ID, cfg.Key, cfg.Type), nil
	})
	r.RegisterNode("blackboard.set", func(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
		var cfg config
		if err := registry.Decode(spec.Attrs, &cfg); err != nil {
			return nil, err
		}
		return NewSet(spec.ID, cfg.Key, cfg.Type), nil
	})
}

func store(n *graph.Base) (blackboard.Store, error) {
	ec := n.Exec()
	if ec == nil || ec.Blackboard == nil {
		return nil, ErrNoBlackboard
	}
	return ec.Blackboard, nil
}

// Get reads a key on every pull. A missing key reads as null.
type Get struct {
	graph.Base
	key string
	typ cty.Type
}

func NewGet(id, key string, typ cty.Type) *Get {
	if typ == cty.NilType {
		typ = cty.DynamicPseudoType
	}
	return &Get{Base: graph.NewBase(id, "blackboard.get"), key: key, typ: typ}
}

func (n *Get) RegisterPorts() {
	n.AddValueOutput("value", n.typ, n.read)
}

func (n *Get) Clone() graph.Node {
	return &Get{Base: n.CloneBase(), key: n.key, typ: n.typ}
}

func (n *Get) read() cty.Value {
	bb, err := store(&n.Base)
	if err != nil {
		n.Fail(err)
		return cty.NullVal(n.typ)
	}
	v, found, err := bb.Get(n.Context(), n.key)
	if err != nil {
		n.Fail(fmt.Errorf("get %q: %w", n.key, err))
		return cty.NullVal(n.typ)
	}
	if !found {
		return cty.NullVal(n.typ)
	}
	conv, err := convert.Convert(v, n.typ)
	if err != nil {
		n.Fail(fmt.Errorf("get %q: %w", n.key, err))
		return cty.NullVal(n.typ)
	}
	return conv
}

// Set writes its value input to a key when control passes through it.
type Set struct {
	graph.Base
	key string
	typ cty.Type

	value *port.ValueInput
	out   *port.FlowOutput
}

func NewSet(id, key string, typ cty.Type) *Set {
	if typ == cty.NilType {
		typ = cty.DynamicPseudoType
	}
	return &Set{Base: graph.NewBase(id, "blackboard.set"), key: key, typ: typ}
}

func (n *Set) RegisterPorts() {
	n.AddFlowInput("in", n.write)
	n.value = n.AddValueInput("value", n.typ)
	n.out = n.AddFlowOutput("out")
}

func (n *Set) Clone() graph.Node {
	return &Set{Base: n.CloneBase(), key: n.key, typ: n.typ}
}

func (n *Set) write(f *flow.Flow) {
	bb, err := store(&n.Base)
	if err != nil {
		n.Fail(err)
		return
	}
	if err := bb.Set(n.Context(), n.key, n.value.Value()); err != nil {
		n.Fail(fmt.Errorf("set %q: %w", n.key, err))
		return
	}
	n.out.Call(f)
}
