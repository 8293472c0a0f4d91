// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the sentinel errors reported while loading documents.
package model

import "errors"

var (
	// ErrDuplicateName is returned when two graphs, functions or tasks share
	// a name.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrInvalidID is returned for empty, dotted or reserved node and port ids.
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidPortRef is returned for connection endpoints that are not of
	// the form "node.port".
	ErrInvalidPortRef = errors.New("invalid port reference")
	// ErrUnsupportedFormat is returned for files that are neither HCL nor JSON.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)
