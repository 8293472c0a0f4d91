package function

import (
	"fmt"

	"github.com/specialistvlad/flowgridgo/internal/flow"
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/port"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Return hands its value back to the function call that owns the flow and
// ends that call.
type Return struct {
	graph.Base
	value *port.ValueInput
}

func NewReturn(id string) *Return {
	return &Return{Base: graph.NewBase(id, "function.return")}
}

func (n *Return) RegisterPorts() {
	n.AddFlowInput("in", n.ret)
	n.value = n.AddValueInput("value", cty.DynamicPseudoType)
}

func (n *Return) Clone() graph.Node { return &Return{Base: n.CloneBase()} }

func (n *Return) ret(f *flow.Flow) {
	if !f.HasReturn() {
		n.Fail(graph.ErrNoReturnContext)
		return
	}

	v := n.value.Value()
	if !f.ExpectsValue() {
		if !v.IsNull() {
			n.Logger().Warn("Returned value dropped, the function declares no return type.", "value_type", v.Type().FriendlyName())
		}
		f.Return(cty.NullVal(cty.DynamicPseudoType))
		return
	}

	want := f.ReturnType()
	if want.Equals(cty.DynamicPseudoType) || v.IsNull() {
		f.Return(v)
		return
	}
	converted, err := convert.Convert(v, want)
	if err != nil {
		n.Fail(fmt.Errorf("%w: want %s, got %s", graph.ErrReturnTypeMismatch, want.FriendlyName(), v.Type().FriendlyName()))
		return
	}
	f.Return(converted)
}
