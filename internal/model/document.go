// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Document, the root container for everything loaded
// from a set of definition files.
//
// Why aggregate into one Document?
//
// Users split definitions across many files. A graph in one file may call a
// function defined in another, so references can only be resolved once every
// file has been read. The Document is that workspace-wide view, and it is the
// single input of the builder.
package model

import (
	"errors"
	"fmt"
)

// Document is the merged content of one or more definition files.
type Document struct {
	Graphs    []*GraphSpec
	Functions []*FunctionSpec
	Tasks     []*TaskSpec
}

// NewDocument creates and returns an empty Document.
func NewDocument() *Document {
	return &Document{
		Graphs:    []*GraphSpec{},
		Functions: []*FunctionSpec{},
		Tasks:     []*TaskSpec{},
	}
}

// Merge appends the content of other. Names must be unique per kind across
// the whole document; every clash is reported.
func (d *Document) Merge(other *Document) error {
	var errs []error
	for _, g := range other.Graphs {
		if prev := d.Graph(g.Name); prev != nil {
			errs = append(errs, duplicateError("graph", g.Name, prev.FSInformation, g.FSInformation))
			continue
		}
		d.Graphs = append(d.Graphs, g)
	}
	for _, f := range other.Functions {
		if prev := d.Function(f.Name); prev != nil {
			errs = append(errs, duplicateError("function", f.Name, prev.FSInformation, f.FSInformation))
			continue
		}
		d.Functions = append(d.Functions, f)
	}
	for _, t := range other.Tasks {
		if prev := d.Task(t.Name); prev != nil {
			errs = append(errs, duplicateError("task", t.Name, prev.FSInformation, t.FSInformation))
			continue
		}
		d.Tasks = append(d.Tasks, t)
	}
	return errors.Join(errs...)
}

// Graph looks up a graph by name.
func (d *Document) Graph(name string) *GraphSpec {
	for _, g := range d.Graphs {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Function looks up a function by name.
func (d *Document) Function(name string) *FunctionSpec {
	for _, f := range d.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Task looks up a task by name.
func (d *Document) Task(name string) *TaskSpec {
	for _, t := range d.Tasks {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func duplicateError(kind, name string, first, second *FSInfo) error {
	return fmt.Errorf("%w: %s %q is defined in %s and again in %s", ErrDuplicateName, kind, name, first, second)
}
