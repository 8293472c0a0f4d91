// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the graph and function specs and the Body they share.
//
// Why one Body for graphs and functions?
//
// A function is a graph with a signature. Its body is wired with exactly the
// same node, connection and default constructs as a top-level graph, so both
// carry the same Body and the builder wires them with the same code. The only
// difference is that a function body may reference the reserved `entry` and
// `exit` nodes, and may not declare nodes with those ids itself.
package model

import (
	"github.com/zclconf/go-cty/cty"
)

// Reserved node ids inside function bodies.
const (
	EntryNodeID = "entry"
	ExitNodeID  = "exit"
)

// Body is the content of a graph or function: nodes in declaration order and
// the connections between their ports.
type Body struct {
	Nodes       []*NodeSpec
	Connections []ConnectionSpec
}

// Node looks up a node by id.
func (b *Body) Node(id string) *NodeSpec {
	for _, n := range b.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// GraphSpec is the format-agnostic representation of a `graph` block.
type GraphSpec struct {
	Name          string
	FSInformation *FSInfo
	Body
}

// FunctionSpec is the format-agnostic representation of a `function` block.
type FunctionSpec struct {
	Name          string
	FSInformation *FSInfo

	// Returns is the declared return type, or cty.NilType when the function
	// returns nothing.
	Returns cty.Type
	Inputs  []PortDefinitionSpec
	Outputs []PortDefinitionSpec

	// ExitDefaults configure the reserved exit node, e.g. a constant
	// `result = false`.
	ExitDefaults map[string]cty.Value

	Body
}

// PortDefinitionSpec is one slot of a function signature. The ID is what
// connections and defaults refer to; it is stored in the document so it is
// identical across loads.
type PortDefinitionSpec struct {
	ID   string
	Name string
	Type cty.Type
}

// NodeSpec is one node declaration.
type NodeSpec struct {
	Type string
	ID   string

	// Attrs are the evaluated configuration attributes.
	Attrs map[string]cty.Value
	// Defaults are values for unconnected value inputs, keyed by port id.
	Defaults map[string]cty.Value
}

// SetDefault records a default for an input port of the node.
func (n *NodeSpec) SetDefault(port string, v cty.Value) {
	if n.Defaults == nil {
		n.Defaults = make(map[string]cty.Value)
	}
	n.Defaults[port] = v
}
