// Package print provides debug.print, which writes a labelled value to the
// agent's io.Writer, or to the log when the agent has none.
package print

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/flowgridgo/internal/flow"
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/model"
	"github.com/specialistvlad/flowgridgo/internal/port"
	"github.com/specialistvlad/flowgridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node type with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode("debug.print", func(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
		var cfg struct {
			Label string `cty:"label"`
		}
		if err := registry.Decode(spec.Attrs, &cfg); err != nil {
			return nil, err
		}
		return New(spec.ID, cfg.Label), nil
	})
}

// Print writes its value input every time control passes through it.
type Print struct {
	graph.Base
	label string

	value *port.ValueInput
	out   *port.FlowOutput
}

func New(id, label string) *Print {
	if label == "" {
		label = id
	}
	return &Print{Base: graph.NewBase(id, "debug.print"), label: label}
}

func (n *Print) RegisterPorts() {
	n.AddFlowInput("in", n.print)
	n.value = n.AddValueInput("value", cty.DynamicPseudoType)
	n.out = n.AddFlowOutput("out")
}

func (n *Print) Clone() graph.Node {
	return &Print{Base: n.CloneBase(), label: n.label}
}

func (n *Print) print(f *flow.Flow) {
	text := Format(n.value.Value())
	if w, ok := graph.ComponentOf[io.Writer](n.Graph()); ok {
		if _, err := fmt.Fprintf(w, "%s = %s\n", n.label, text); err != nil {
			n.Fail(fmt.Errorf("write: %w", err))
		}
	} else {
		n.Logger().Info("Print.", "label", n.label, "value", text)
	}
	n.out.Call(f)
}

// Format renders v as HCL, the way it would be written in a document.
func Format(v cty.Value) string {
	if v.Type() == cty.NilType || v.IsNull() {
		return "null"
	}
	if !v.IsWhollyKnown() {
		return "(unknown)"
	}
	return strings.TrimSpace(string(hclwrite.Format(hclwrite.TokensForValue(v).Bytes())))
}
