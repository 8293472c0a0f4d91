// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the FSInfo struct, which stores file system metadata.
//
// The file path connects a parsed spec back to its physical source on disk,
// so that load and build errors can say which file a bad definition came
// from. Programmatically built specs leave it nil.
package model

// FSInfo records where a spec was loaded from.
type FSInfo struct {
	FilePath string
}

// NewFSInfo returns an FSInfo for filePath.
func NewFSInfo(filePath string) *FSInfo {
	return &FSInfo{
		FilePath: filePath,
	}
}

// String returns the path, or "<memory>" for specs with no file.
func (f *FSInfo) String() string {
	if f == nil || f.FilePath == "" {
		return "<memory>"
	}
	return f.FilePath
}
