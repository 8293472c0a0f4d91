// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines connection specs and the "node.port" reference syntax.
package model

import (
	"fmt"
	"strings"
)

// PortRef names one port of one node.
type PortRef struct {
	Node string
	Port string
}

// String renders the reference as "node.port".
func (r PortRef) String() string { return r.Node + "." + r.Port }

// ParsePortRef parses "node.port". Node ids may not contain dots, so the
// first dot separates the two halves and the port id may contain more.
func ParsePortRef(s string) (PortRef, error) {
	node, port, ok := strings.Cut(s, ".")
	if !ok || node == "" || port == "" {
		return PortRef{}, fmt.Errorf("%w: %q, expected \"node.port\"", ErrInvalidPortRef, s)
	}
	return PortRef{Node: node, Port: port}, nil
}

// ConnectionSpec is one wire from an output port to an input port.
type ConnectionSpec struct {
	From PortRef
	To   PortRef
}

// String renders the connection as "a.b -> c.d".
func (c ConnectionSpec) String() string {
	return c.From.String() + " -> " + c.To.String()
}

// NewConnectionSpec parses both endpoints.
func NewConnectionSpec(from, to string) (ConnectionSpec, error) {
	src, err := ParsePortRef(from)
	if err != nil {
		return ConnectionSpec{}, fmt.Errorf("connection source: %w", err)
	}
	dst, err := ParsePortRef(to)
	if err != nil {
		return ConnectionSpec{}, fmt.Errorf("connection target: %w", err)
	}
	return ConnectionSpec{From: src, To: dst}, nil
}
