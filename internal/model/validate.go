// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file holds the structural checks shared by the HCL and JSON loaders.
// They run before any node type is looked up, so a document with a bad shape
// is rejected no matter which node modules are compiled in.
package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

func validateNodeID(id string, inFunction bool) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: node id must not be empty", ErrInvalidID)
	case strings.Contains(id, "."):
		return fmt.Errorf("%w: node id %q must not contain '.'", ErrInvalidID, id)
	case inFunction && (id == EntryNodeID || id == ExitNodeID):
		return fmt.Errorf("%w: node id %q is reserved inside functions", ErrInvalidID, id)
	}
	return nil
}

// Validate checks the graph's node ids.
func (g *GraphSpec) Validate() error {
	if err := g.Body.validate(false); err != nil {
		return fmt.Errorf("graph %q (%s): %w", g.Name, g.FSInformation, err)
	}
	return nil
}

// Validate checks node ids and the signature.
func (f *FunctionSpec) Validate() error {
	errs := []error{f.Body.validate(true)}
	errs = append(errs, validateDefinitions("input", f.Inputs, "out")...)
	errs = append(errs, validateDefinitions("output", f.Outputs, "in", "result")...)
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("function %q (%s): %w", f.Name, f.FSInformation, err)
	}
	return nil
}

// Validate checks that the task names a function.
func (t *TaskSpec) Validate() error {
	if t.Function == "" {
		return fmt.Errorf("task %q (%s): function must be set", t.Name, t.FSInformation)
	}
	return nil
}

func (b *Body) validate(inFunction bool) error {
	var errs []error
	seen := make(map[string]bool, len(b.Nodes))
	for _, n := range b.Nodes {
		if err := validateNodeID(n.ID, inFunction); err != nil {
			errs = append(errs, err)
			continue
		}
		if n.Type == "" {
			errs = append(errs, fmt.Errorf("node %q has no type", n.ID))
		}
		if seen[n.ID] {
			errs = append(errs, fmt.Errorf("%w: node id %q is declared twice", ErrInvalidID, n.ID))
		}
		seen[n.ID] = true
	}
	return errors.Join(errs...)
}

func validateDefinitions(kind string, defs []PortDefinitionSpec, reserved ...string) []error {
	var errs []error
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			errs = append(errs, fmt.Errorf("%w: %s %q has an empty id", ErrInvalidID, kind, d.Name))
			continue
		}
		if slices.Contains(reserved, d.ID) {
			errs = append(errs, fmt.Errorf("%w: %s id %q is reserved", ErrInvalidID, kind, d.ID))
			continue
		}
		if seen[d.ID] {
			errs = append(errs, fmt.Errorf("%w: %s id %q is declared twice", ErrInvalidID, kind, d.ID))
		}
		seen[d.ID] = true
	}
	return errs
}
