package blackboard

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/zclconf/go-cty/cty"
)

// Memory is an ephemeral Store backed by sync.Map. Keys are independent, so
// concurrent reads and writes to different parameters never contend on a
// global lock.
type Memory struct {
	values sync.Map // Key: parameter name, Value: cty.Value
	closed atomic.Bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Get returns the value stored under key.
func (m *Memory) Get(ctx context.Context, key string) (cty.Value, bool, error) {
	if m.closed.Load() {
		return cty.NilVal, false, ErrClosed
	}
	v, ok := m.values.Load(key)
	if !ok {
		return cty.NilVal, false, nil
	}
	return v.(cty.Value), true, nil
}

// Set stores v under key.
func (m *Memory) Set(ctx context.Context, key string, v cty.Value) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.values.Store(key, v)
	return nil
}

// Delete removes key.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.values.Delete(key)
	return nil
}

// Keys lists the stored keys in lexical order.
func (m *Memory) Keys(ctx context.Context) ([]string, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	var keys []string
	m.values.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys, nil
}

// Close marks the store closed. Stored values are dropped.
func (m *Memory) Close() error {
	m.closed.Store(true)
	m.values.Clear()
	return nil
}
