// Package function provides the nodes that define, call and return from
// functions: function.custom, function.invoke, function.call,
// function.input and function.return.
package function

import (
	"fmt"

	"github.com/specialistvlad/flowgridgo/internal/fghcl"
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/model"
	"github.com/specialistvlad/flowgridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node types with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode("function.custom", newCustomFromSpec)
	r.RegisterNode("function.invoke", newInvokeFromSpec)
	r.RegisterNode("function.call", newCallFromSpec)
	r.RegisterNode("function.input", newInputFromSpec)
	r.RegisterNode("function.return", func(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
		if err := registry.Decode(spec.Attrs, &struct{}{}); err != nil {
			return nil, err
		}
		return NewReturn(spec.ID), nil
	})
}

// Param is one typed parameter of a custom function.
type Param struct {
	Name string
	Type cty.Type
}

// parseParams reads a parameter list. Each element is either a bare name,
// which accepts any type, or an object with `name` and an optional `type`.
func parseParams(v cty.Value) ([]Param, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() || !v.CanIterateElements() || v.Type().IsMapType() || v.Type().IsObjectType() {
		return nil, fmt.Errorf("params must be a list")
	}

	var params []Param
	seen := make(map[string]bool)
	for it := v.ElementIterator(); it.Next(); {
		_, el := it.Element()
		p, err := parseParam(el)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", len(params), err)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate param %q", p.Name)
		}
		seen[p.Name] = true
		params = append(params, p)
	}
	return params, nil
}

func parseParam(el cty.Value) (Param, error) {
	if el.IsNull() {
		return Param{}, fmt.Errorf("null param")
	}
	if el.Type().Equals(cty.String) {
		return Param{Name: el.AsString(), Type: cty.DynamicPseudoType}, nil
	}
	if !el.Type().IsObjectType() || !el.Type().HasAttribute("name") {
		return Param{}, fmt.Errorf("expected a name or an object with a name")
	}

	name, err := convert.Convert(el.GetAttr("name"), cty.String)
	if err != nil || name.IsNull() || name.AsString() == "" {
		return Param{}, fmt.Errorf("name must be a non-empty string")
	}
	p := Param{Name: name.AsString(), Type: cty.DynamicPseudoType}
	if el.Type().HasAttribute("type") {
		raw, err := convert.Convert(el.GetAttr("type"), cty.String)
		if err != nil || raw.IsNull() {
			return Param{}, fmt.Errorf("param %q: type must be a type name", p.Name)
		}
		if p.Type, err = fghcl.ParseType(raw.AsString()); err != nil {
			return Param{}, fmt.Errorf("param %q: %w", p.Name, err)
		}
	}
	return p, nil
}

// orDynamic maps the "no type" marker to the dynamic pseudo-type.
func orDynamic(t cty.Type) cty.Type {
	if t == cty.NilType {
		return cty.DynamicPseudoType
	}
	return t
}
