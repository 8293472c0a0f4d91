package function

import (
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/model"
	"github.com/specialistvlad/flowgridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Input exposes one input slot of the owning function as a value output.
type Input struct {
	graph.Base
	slot string
}

func NewInput(id, slot string) *Input {
	return &Input{Base: graph.NewBase(id, "function.input"), slot: slot}
}

func newInputFromSpec(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
	var cfg struct {
		Slot string `cty:"slot,required"`
	}
	if err := registry.Decode(spec.Attrs, &cfg); err != nil {
		return nil, err
	}
	return NewInput(spec.ID, cfg.Slot), nil
}

func (n *Input) RegisterPorts() {
	typ := cty.DynamicPseudoType
	if def, ok := n.definition(); ok {
		typ = def.Type
	}
	n.AddValueOutput("value", typ, func() cty.Value {
		fn := n.owner()
		if fn == nil {
			return cty.NullVal(typ)
		}
		v := fn.Argument(n.slot)
		if v.Type() == cty.NilType {
			return cty.NullVal(typ)
		}
		return v
	})
}

func (n *Input) Clone() graph.Node { return &Input{Base: n.CloneBase(), slot: n.slot} }

// OnSignatureChanged implements graph.SignatureDependent.
func (n *Input) OnSignatureChanged() {
	if _, ok := n.definition(); !ok {
		n.Logger().Warn("Input slot no longer exists.", "slot", n.slot)
	}
}

func (n *Input) owner() *graph.Function {
	g := n.Graph()
	if g == nil {
		return nil
	}
	return g.Function()
}

func (n *Input) definition() (graph.PortDefinition, bool) {
	fn := n.owner()
	if fn == nil {
		return graph.PortDefinition{}, false
	}
	return fn.Input(n.slot)
}
