package graph

import (
	"errors"
	"fmt"
)

var (
	// Lifecycle
	ErrAlreadyRunning = errors.New("graph is already running")
	ErrDuplicateNode  = errors.New("duplicate node id")

	// Load-time connection validation
	ErrUnknownNode     = errors.New("unknown node")
	ErrUnknownPort     = errors.New("unknown port")
	ErrDirection       = errors.New("connection must run from an output to an input")
	ErrChannelMismatch = errors.New("connection mixes value and flow ports")
	ErrTypeMismatch    = errors.New("connection types are incompatible")

	// Usage errors reported by nodes at runtime
	ErrNoReturnContext    = errors.New("return used outside of a function call")
	ErrReturnTypeMismatch = errors.New("returned value does not match the declared return type")
	ErrRecursionLimit     = errors.New("function call depth limit exceeded")
	ErrNodePanic          = errors.New("node panicked")
)

// IsUsageError reports whether err is one of the recoverable usage errors that
// nodes report through their failure hook.
func IsUsageError(err error) bool {
	return errors.Is(err, ErrNoReturnContext) ||
		errors.Is(err, ErrReturnTypeMismatch) ||
		errors.Is(err, ErrRecursionLimit)
}

// ConnectionError describes a connection that failed validation and will not
// be honored at runtime.
type ConnectionError struct {
	Connection Connection
	Err        error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %s: %v", e.Connection, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// NodeError is a failure reported by a node through Base.Fail.
type NodeError struct {
	NodeID   string
	NodeType string
	Err      error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q (%s): %v", e.NodeID, e.NodeType, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }
