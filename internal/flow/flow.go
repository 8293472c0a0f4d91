// Package flow defines the execution token threaded through every control-flow
// call. A Flow represents one logical call's dynamic extent: it carries the
// return sink used by function calls and guards against runaway call depth.
package flow

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// DefaultMaxDepth is the flow depth ceiling used by New.
const DefaultMaxDepth = 1024

// ErrDepthExceeded is reported when a flow chain nests deeper than its ceiling,
// which in practice means the flow wiring contains a cycle.
var ErrDepthExceeded = errors.New("flow depth limit exceeded")

// Flow is an ephemeral, single-use execution token. It is not safe to reuse
// across unrelated call chains.
type Flow struct {
	sink       func(cty.Value)
	returnType cty.Type
	hasReturn  bool
	returned   bool

	depth    int
	maxDepth int
}

// New creates a top-level Flow with no return sink.
func New() *Flow {
	return NewWithLimit(DefaultMaxDepth)
}

// NewWithLimit creates a top-level Flow with the given depth ceiling. A limit
// of zero or less disables the guard.
func NewWithLimit(maxDepth int) *Flow {
	return &Flow{maxDepth: maxDepth, returnType: cty.NilType}
}

// WithReturn returns a fresh Flow that inherits the depth ceiling of f and
// reports returned values to sink. A returnType of cty.NilType means the
// caller expects no value. The depth counter starts again at zero, so each
// function call gets its own flow budget; recursion across calls is bounded
// by the named-call ceiling instead.
func (f *Flow) WithReturn(sink func(cty.Value), returnType cty.Type) *Flow {
	return &Flow{
		sink:       sink,
		returnType: returnType,
		hasReturn:  sink != nil,
		maxDepth:   f.maxDepth,
	}
}

// HasReturn reports whether the flow belongs to a function call that can be
// returned from.
func (f *Flow) HasReturn() bool { return f.hasReturn }

// ReturnType is the type the caller expects, or cty.NilType.
func (f *Flow) ReturnType() cty.Type { return f.returnType }

// ExpectsValue reports whether the caller declared a return type.
func (f *Flow) ExpectsValue() bool { return f.returnType != cty.NilType }

// Return hands v to the return sink and marks the flow as returned, which
// stops all further flow propagation on this token. It is a no-op when the
// flow has no sink or has already returned.
func (f *Flow) Return(v cty.Value) {
	if !f.hasReturn || f.returned {
		return
	}
	f.returned = true
	f.sink(v)
}

// Returned reports whether Return has been called.
func (f *Flow) Returned() bool { return f.returned }

// Depth is the current nesting level of flow input calls.
func (f *Flow) Depth() int { return f.depth }

// Enter records one more level of nesting. Every successful Enter must be
// paired with a Leave.
func (f *Flow) Enter() error {
	if f.maxDepth > 0 && f.depth >= f.maxDepth {
		return fmt.Errorf("%w: depth %d", ErrDepthExceeded, f.depth)
	}
	f.depth++
	return nil
}

// Leave undoes one Enter.
func (f *Flow) Leave() {
	if f.depth > 0 {
		f.depth--
	}
}
