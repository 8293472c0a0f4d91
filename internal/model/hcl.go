// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file decodes the HCL form of a document.
//
// The structs below are the gohcl decoding targets. They mirror the HCL
// syntax one-to-one and are converted into the format-agnostic specs right
// after decoding. Node bodies are decoded by hand: their attributes are free
// form and only the node type knows which ones it accepts.
package model

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/flowgridgo/internal/fghcl"
	"github.com/zclconf/go-cty/cty"
)

type hclFile struct {
	Functions []*hclFunction `hcl:"function,block"`
	Graphs    []*hclGraph    `hcl:"graph,block"`
	Tasks     []*hclTask     `hcl:"task,block"`
}

type hclGraph struct {
	Name     string         `hcl:"name,label"`
	Nodes    []*hclNode     `hcl:"node,block"`
	Defaults []*hclDefaults `hcl:"defaults,block"`
	Connects []*hclConnect  `hcl:"connect,block"`
}

type hclFunction struct {
	Name     string         `hcl:"name,label"`
	Returns  hcl.Expression `hcl:"returns,optional"`
	Inputs   []*hclPortDef  `hcl:"input,block"`
	Outputs  []*hclPortDef  `hcl:"output,block"`
	Nodes    []*hclNode     `hcl:"node,block"`
	Defaults []*hclDefaults `hcl:"defaults,block"`
	Connects []*hclConnect  `hcl:"connect,block"`
}

type hclPortDef struct {
	Name     string         `hcl:"name,label"`
	Type     hcl.Expression `hcl:"type"`
	ID       *string        `hcl:"id,optional"`
	DefRange hcl.Range      `hcl:",def_range"`
}

type hclNode struct {
	Type     string    `hcl:"type,label"`
	ID       string    `hcl:"id,label"`
	Body     hcl.Body  `hcl:",remain"`
	DefRange hcl.Range `hcl:",def_range"`
}

type hclDefaults struct {
	Node     string    `hcl:"node,label"`
	Body     hcl.Body  `hcl:",remain"`
	DefRange hcl.Range `hcl:",def_range"`
}

type hclConnect struct {
	From     string    `hcl:"from"`
	To       string    `hcl:"to"`
	DefRange hcl.Range `hcl:",def_range"`
}

type hclTask struct {
	Name     string            `hcl:"name,label"`
	Kind     string            `hcl:"kind"`
	Function string            `hcl:"function"`
	Params   map[string]string `hcl:"params,optional"`
	Every    *int              `hcl:"every,optional"`
	DefRange hcl.Range         `hcl:",def_range"`
}

var nodeBodySchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "defaults"}},
}

// ParseHCL decodes one HCL document.
func ParseHCL(parser *hclparse.Parser, src []byte, filename string) (*Document, error) {
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(file.Body, fghcl.EvalContext(), &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	info := NewFSInfo(filename)
	doc := NewDocument()
	var allDiags hcl.Diagnostics

	for _, hf := range parsed.Functions {
		fn, fnDiags := functionFromHCL(hf, info)
		allDiags = append(allDiags, fnDiags...)
		doc.Functions = append(doc.Functions, fn)
	}
	for _, hg := range parsed.Graphs {
		g := &GraphSpec{Name: hg.Name, FSInformation: info}
		strays, bodyDiags := bodyFromHCL(hg.Nodes, hg.Defaults, hg.Connects, &g.Body)
		allDiags = append(allDiags, bodyDiags...)
		for _, d := range strays {
			allDiags = append(allDiags, unknownDefaultsTarget(d))
		}
		doc.Graphs = append(doc.Graphs, g)
	}
	for _, ht := range parsed.Tasks {
		t, taskDiags := taskFromHCL(ht, info)
		allDiags = append(allDiags, taskDiags...)
		doc.Tasks = append(doc.Tasks, t)
	}

	if allDiags.HasErrors() {
		return nil, fmt.Errorf("error decoding HCL file %s: %w", filename, allDiags)
	}
	return doc, nil
}

func functionFromHCL(hf *hclFunction, info *FSInfo) (*FunctionSpec, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	fn := &FunctionSpec{Name: hf.Name, FSInformation: info, Returns: cty.NilType}

	if exprPresent(hf.Returns) {
		t, typeDiags := fghcl.TypeFromExpr(hf.Returns)
		diags = append(diags, typeDiags...)
		fn.Returns = t
	}

	fn.Inputs, diags = appendPortDefs(diags, hf.Inputs)
	fn.Outputs, diags = appendPortDefs(diags, hf.Outputs)

	strays, bodyDiags := bodyFromHCL(hf.Nodes, hf.Defaults, hf.Connects, &fn.Body)
	diags = append(diags, bodyDiags...)
	for _, d := range strays {
		if d.Node != ExitNodeID {
			diags = append(diags, unknownDefaultsTarget(d))
			continue
		}
		values, attrDiags := attributesFromHCL(d.Body)
		diags = append(diags, attrDiags...)
		if fn.ExitDefaults == nil {
			fn.ExitDefaults = make(map[string]cty.Value)
		}
		for k, v := range values {
			fn.ExitDefaults[k] = v
		}
	}
	return fn, diags
}

func appendPortDefs(diags hcl.Diagnostics, blocks []*hclPortDef) ([]PortDefinitionSpec, hcl.Diagnostics) {
	defs := make([]PortDefinitionSpec, 0, len(blocks))
	for _, b := range blocks {
		t, typeDiags := fghcl.TypeFromExpr(b.Type)
		diags = append(diags, typeDiags...)
		def := PortDefinitionSpec{ID: b.Name, Name: b.Name, Type: t}
		if b.ID != nil {
			def.ID = *b.ID
		}
		defs = append(defs, def)
	}
	return defs, diags
}

// bodyFromHCL fills body and returns the defaults blocks whose target is not
// a declared node, for the caller to resolve.
func bodyFromHCL(nodes []*hclNode, defaults []*hclDefaults, connects []*hclConnect, body *Body) ([]*hclDefaults, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	for _, hn := range nodes {
		n := &NodeSpec{Type: hn.Type, ID: hn.ID}
		content, remain, contentDiags := hn.Body.PartialContent(nodeBodySchema)
		diags = append(diags, contentDiags...)

		attrs, attrDiags := attributesFromHCL(remain)
		diags = append(diags, attrDiags...)
		n.Attrs = attrs

		block, blockDiags := fghcl.FindUniqueBlock(content.Blocks, "defaults")
		diags = append(diags, blockDiags...)
		if block != nil {
			values, valueDiags := attributesFromHCL(block.Body)
			diags = append(diags, valueDiags...)
			for k, v := range values {
				n.SetDefault(k, v)
			}
		}
		body.Nodes = append(body.Nodes, n)
	}

	var strays []*hclDefaults
	for _, hd := range defaults {
		n := body.Node(hd.Node)
		if n == nil {
			strays = append(strays, hd)
			continue
		}
		values, valueDiags := attributesFromHCL(hd.Body)
		diags = append(diags, valueDiags...)
		for k, v := range values {
			n.SetDefault(k, v)
		}
	}

	for _, hc := range connects {
		c, err := NewConnectionSpec(hc.From, hc.To)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid connection",
				Detail:   err.Error(),
				Subject:  hc.DefRange.Ptr(),
			})
			continue
		}
		body.Connections = append(body.Connections, c)
	}

	return strays, diags
}

func attributesFromHCL(body hcl.Body) (map[string]cty.Value, hcl.Diagnostics) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	values := make(map[string]cty.Value, len(attrs))
	ctx := fghcl.EvalContext()
	for name, attr := range attrs {
		v, valDiags := attr.Expr.Value(ctx)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		values[name] = v
	}
	return values, diags
}

func taskFromHCL(ht *hclTask, info *FSInfo) (*TaskSpec, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	t := &TaskSpec{
		Name:          ht.Name,
		FSInformation: info,
		Function:      ht.Function,
		Params:        ht.Params,
		Every:         1,
	}
	if ht.Every != nil {
		t.Every = *ht.Every
	}
	kind, err := ParseTaskKind(ht.Kind)
	if err != nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid task kind",
			Detail:   err.Error(),
			Subject:  ht.DefRange.Ptr(),
		})
	}
	t.Kind = kind
	return t, diags
}

func unknownDefaultsTarget(d *hclDefaults) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Unknown node in defaults",
		Detail:   fmt.Sprintf("The defaults block targets %q, which is not declared in this body.", d.Node),
		Subject:  d.DefRange.Ptr(),
	}
}

// exprPresent reports whether an optional attribute was written. gohcl fills
// absent expression attributes with a static null.
func exprPresent(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	v, diags := expr.Value(nil)
	return diags.HasErrors() || !v.IsNull()
}
