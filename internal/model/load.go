// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file discovers definition files and merges them into one Document.
//
// Paths may name files or directories. Directories are searched recursively
// for .hcl and .json files. The resulting Document is validated structurally
// before it is returned, so every later stage can assume unique names and
// well-formed ids.
package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/flowgridgo/internal/ctxlog"
	"github.com/specialistvlad/flowgridgo/internal/fsutil"
)

// Supported document extensions.
const (
	ExtHCL  = ".hcl"
	ExtJSON = ".json"
)

// Load finds and parses all definition files under paths into one Document.
func Load(ctx context.Context, paths ...string) (*Document, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read definitions path %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := fsutil.FindFilesByExtension(p, ExtHCL, ExtJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to find definition files in %s: %w", p, err)
		}
		if len(found) == 0 {
			logger.Warn("No definition files found in path.", "path", p)
		}
		files = append(files, found...)
	}

	doc := NewDocument()
	parser := hclparse.NewParser()
	for _, file := range files {
		logger.Debug("Loading definition file.", "path", file)
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		part, err := parse(parser, src, file)
		if err != nil {
			return nil, err
		}
		if err := doc.Merge(part); err != nil {
			return nil, err
		}
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	logger.Info("Definitions loaded.",
		"files", len(files),
		"graphs", len(doc.Graphs),
		"functions", len(doc.Functions),
		"tasks", len(doc.Tasks),
	)
	return doc, nil
}

// Validate runs the structural checks of every graph, function and task.
func (d *Document) Validate() error {
	var errs []error
	for _, g := range d.Graphs {
		errs = append(errs, g.Validate())
	}
	for _, f := range d.Functions {
		errs = append(errs, f.Validate())
	}
	for _, t := range d.Tasks {
		errs = append(errs, t.Validate())
	}
	return errors.Join(errs...)
}

func parse(parser *hclparse.Parser, src []byte, filename string) (*Document, error) {
	switch filepath.Ext(filename) {
	case ExtHCL:
		return ParseHCL(parser, src, filename)
	case ExtJSON:
		return ParseJSON(src, filename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}
