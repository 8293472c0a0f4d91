// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file decodes the JSON form of a document. It mirrors the HCL form:
//
//	{
//	  "functions": [{
//	    "name": "add", "returns": "number",
//	    "inputs":  [{"name": "a", "type": "number"}],
//	    "outputs": [{"name": "sum", "type": "number"}],
//	    "nodes": [{"type": "math.add", "id": "adder", "attrs": {}, "defaults": {}}],
//	    "connections": [{"from": "entry.a", "to": "adder.a"}],
//	    "exit_defaults": {"result": true}
//	  }],
//	  "graphs": [{"name": "main", "nodes": [], "connections": []}],
//	  "tasks":  [{"name": "ready", "kind": "condition", "function": "is_ready", "params": {"x": "bb.x"}}]
//	}
//
// Attribute and default values are decoded with their JSON-implied cty
// types, so a JSON number becomes a cty.Number and a JSON object a cty
// object, exactly as the equivalent HCL literal would.
package model

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/flowgridgo/internal/fghcl"
	"github.com/specialistvlad/flowgridgo/internal/xjson"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

type jsonFile struct {
	Functions []jsonFunction `json:"functions"`
	Graphs    []jsonGraph    `json:"graphs"`
	Tasks     []jsonTask     `json:"tasks"`
}

type jsonGraph struct {
	Name        string           `json:"name"`
	Nodes       []jsonNode       `json:"nodes"`
	Connections []jsonConnection `json:"connections"`
}

type jsonFunction struct {
	Name         string                       `json:"name"`
	Returns      string                       `json:"returns,omitempty"`
	Inputs       []jsonPortDef                `json:"inputs"`
	Outputs      []jsonPortDef                `json:"outputs"`
	Nodes        []jsonNode                   `json:"nodes"`
	Connections  []jsonConnection             `json:"connections"`
	ExitDefaults map[string]xjson.RawMessage `json:"exit_defaults,omitempty"`
}

type jsonPortDef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type jsonNode struct {
	Type     string                       `json:"type"`
	ID       string                       `json:"id"`
	Attrs    map[string]xjson.RawMessage `json:"attrs,omitempty"`
	Defaults map[string]xjson.RawMessage `json:"defaults,omitempty"`
}

type jsonConnection struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type jsonTask struct {
	Name     string            `json:"name"`
	Kind     string            `json:"kind"`
	Function string            `json:"function"`
	Params   map[string]string `json:"params,omitempty"`
	Every    *int              `json:"every,omitempty"`
}

// ParseJSON decodes one JSON document.
func ParseJSON(src []byte, filename string) (*Document, error) {
	var parsed jsonFile
	if err := xjson.Unmarshal(src, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse JSON file %s: %w", filename, err)
	}

	info := NewFSInfo(filename)
	doc := NewDocument()
	var errs []error

	for _, jf := range parsed.Functions {
		fn, err := functionFromJSON(jf, info)
		if err != nil {
			errs = append(errs, fmt.Errorf("function %q: %w", jf.Name, err))
			continue
		}
		doc.Functions = append(doc.Functions, fn)
	}
	for _, jg := range parsed.Graphs {
		g := &GraphSpec{Name: jg.Name, FSInformation: info}
		if err := bodyFromJSON(jg.Nodes, jg.Connections, &g.Body); err != nil {
			errs = append(errs, fmt.Errorf("graph %q: %w", jg.Name, err))
			continue
		}
		doc.Graphs = append(doc.Graphs, g)
	}
	for _, jt := range parsed.Tasks {
		kind, err := ParseTaskKind(jt.Kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("task %q: %w", jt.Name, err))
			continue
		}
		t := &TaskSpec{Name: jt.Name, FSInformation: info, Kind: kind, Function: jt.Function, Params: jt.Params, Every: 1}
		if jt.Every != nil {
			t.Every = *jt.Every
		}
		doc.Tasks = append(doc.Tasks, t)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("error decoding JSON file %s: %w", filename, err)
	}
	return doc, nil
}

func functionFromJSON(jf jsonFunction, info *FSInfo) (*FunctionSpec, error) {
	fn := &FunctionSpec{Name: jf.Name, FSInformation: info, Returns: cty.NilType}
	if jf.Returns != "" {
		t, err := fghcl.ParseType(jf.Returns)
		if err != nil {
			return nil, fmt.Errorf("returns: %w", err)
		}
		fn.Returns = t
	}

	var err error
	if fn.Inputs, err = portDefsFromJSON(jf.Inputs); err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	if fn.Outputs, err = portDefsFromJSON(jf.Outputs); err != nil {
		return nil, fmt.Errorf("outputs: %w", err)
	}
	if len(jf.ExitDefaults) > 0 {
		if fn.ExitDefaults, err = valuesFromJSON(jf.ExitDefaults); err != nil {
			return nil, fmt.Errorf("exit_defaults: %w", err)
		}
	}
	if err := bodyFromJSON(jf.Nodes, jf.Connections, &fn.Body); err != nil {
		return nil, err
	}
	return fn, nil
}

func portDefsFromJSON(in []jsonPortDef) ([]PortDefinitionSpec, error) {
	defs := make([]PortDefinitionSpec, 0, len(in))
	for _, d := range in {
		t, err := fghcl.ParseType(d.Type)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", d.Name, err)
		}
		def := PortDefinitionSpec{ID: d.ID, Name: d.Name, Type: t}
		if def.ID == "" {
			def.ID = d.Name
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func bodyFromJSON(nodes []jsonNode, conns []jsonConnection, body *Body) error {
	var errs []error
	for _, jn := range nodes {
		n := &NodeSpec{Type: jn.Type, ID: jn.ID}
		attrs, err := valuesFromJSON(jn.Attrs)
		if err != nil {
			errs = append(errs, fmt.Errorf("node %q attrs: %w", jn.ID, err))
		}
		n.Attrs = attrs
		defaults, err := valuesFromJSON(jn.Defaults)
		if err != nil {
			errs = append(errs, fmt.Errorf("node %q defaults: %w", jn.ID, err))
		}
		for k, v := range defaults {
			n.SetDefault(k, v)
		}
		body.Nodes = append(body.Nodes, n)
	}
	for _, jc := range conns {
		c, err := NewConnectionSpec(jc.From, jc.To)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		body.Connections = append(body.Connections, c)
	}
	return errors.Join(errs...)
}

func valuesFromJSON(raw map[string]xjson.RawMessage) (map[string]cty.Value, error) {
	values := make(map[string]cty.Value, len(raw))
	for name, msg := range raw {
		t, err := ctyjson.ImpliedType(msg)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}
		v, err := ctyjson.Unmarshal(msg, t)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}
		values[name] = v
	}
	return values, nil
}
