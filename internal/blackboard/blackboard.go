// Package blackboard provides the key/value parameter store a graph's
// execution context exposes to its nodes.
//
// # Purpose
//
// Nodes and function call sites read and write named parameters through a
// Store without knowing where the values live. Two implementations exist:
//
//   - Memory: ephemeral, backed by sync.Map. Suitable for tests and
//     single-run hosts.
//   - Badger: persistent, backed by an embedded badger database, so
//     parameters survive process restarts.
//
// # Concurrency Model
//
// The engine itself is single-threaded, but hosts may inspect parameters from
// other goroutines (for example a health endpoint). Both stores are therefore
// safe for concurrent use.
//
// # Value Encoding
//
// Values are cty values. The persistent store writes them as a JSON envelope
// holding the cty type and the cty JSON value, so typed values round-trip
// exactly.
package blackboard

import (
	"context"
	"errors"

	"github.com/zclconf/go-cty/cty"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("blackboard: store is closed")

// Store is the parameter store contract.
type Store interface {
	// Get returns the value stored under key. The boolean is false when the
	// key is absent.
	Get(ctx context.Context, key string) (cty.Value, bool, error)
	// Set stores v under key, replacing any previous value.
	Set(ctx context.Context, key string, v cty.Value) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists all stored keys in lexical order.
	Keys(ctx context.Context) ([]string, error)
	// Close releases any resources held by the store.
	Close() error
}
