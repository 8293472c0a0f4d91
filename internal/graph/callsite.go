package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/specialistvlad/flowgridgo/internal/ctxlog"
	"github.com/specialistvlad/flowgridgo/internal/flow"
	"github.com/zclconf/go-cty/cty"
)

// ArgumentSource supplies caller arguments by input slot id. It is read
// lazily, at the moment the callee pulls the argument.
type ArgumentSource func(id string) cty.Value

// CallSite owns one live clone of a function definition, bound to a single
// caller and execution context. Two call sites of the same definition never
// share node or port state.
type CallSite struct {
	id   string
	fn   *Function
	args ArgumentSource

	instance *Function
	version  uint64
	ec       *ExecContext

	results  map[string]cty.Value
	returned cty.Value
	ok       bool
	exited   bool
}

// NewCallSite creates a call site for fn. No instance exists until the first
// Start or Call.
func NewCallSite(fn *Function, args ArgumentSource) *CallSite {
	return &CallSite{
		id:       uuid.NewString(),
		fn:       fn,
		args:     args,
		returned: cty.NilVal,
	}
}

// ID identifies the call site in logs.
func (c *CallSite) ID() string { return c.id }

// Function returns the definition the call site clones.
func (c *CallSite) Function() *Function { return c.fn }

// SetFunction swaps the definition. The current instance is stopped and a
// new clone is made on the next call.
func (c *CallSite) SetFunction(fn *Function) {
	if c.fn == fn {
		return
	}
	c.Stop()
	c.instance = nil
	c.fn = fn
	c.results = nil
	c.returned = cty.NilVal
	c.ok = false
	c.exited = false
}

// Instance returns the live clone, or nil.
func (c *CallSite) Instance() *Function { return c.instance }

// Start makes sure a live instance exists and is running with ec. A changed
// definition version or context forces a fresh instance.
func (c *CallSite) Start(ctx context.Context, ec *ExecContext) error {
	if c.fn == nil {
		return fmt.Errorf("call site %s has no function", c.id)
	}
	if c.instance != nil && c.version == c.fn.Version() {
		if c.ec == ec && c.instance.graph.running {
			return nil
		}
		c.instance.graph.Stop()
		c.ec = ec
		return c.instance.graph.Start(ctx, ec)
	}

	if c.instance != nil {
		c.instance.graph.Stop()
	}
	inst := c.fn.Clone()
	inst.entry.args = c.argument
	inst.exit.sink = c.writeBack
	if err := inst.graph.Start(ctx, ec); err != nil {
		return fmt.Errorf("start instance of function %q: %w", c.fn.Name(), err)
	}
	c.instance = inst
	c.version = c.fn.Version()
	c.ec = ec
	c.results = make(map[string]cty.Value)
	ctxlog.FromContext(ctx).Debug("Function instance created.", "function", c.fn.Name(), "call_site", c.id)
	return nil
}

// Update ticks the live instance, if it is running.
func (c *CallSite) Update() {
	if c.instance != nil {
		c.instance.graph.Update()
	}
}

// Stop stops the live instance, keeping it for the next call.
func (c *CallSite) Stop() {
	if c.instance != nil {
		c.instance.graph.Stop()
	}
}

// Call runs the function once and reports its result flag. The flag is true
// when the exit node fired with a true result or a return node handed back a
// value.
func (c *CallSite) Call(ctx context.Context, ec *ExecContext) bool {
	if err := c.Start(ctx, ec); err != nil {
		ctxlog.FromContext(ctx).Error("Function call failed to start.", "function", c.fn.Name(), "error", err)
		return false
	}

	c.ok = false
	c.exited = false
	c.returned = cty.NilVal
	root := flow.NewWithLimit(c.instance.graph.opts.MaxFlowDepth)
	f := root.WithReturn(c.onReturn, c.fn.ReturnType())
	c.instance.entry.fire(f)
	return c.ok
}

// OK is the result flag of the last call.
func (c *CallSite) OK() bool { return c.ok }

// Result returns the value last written back for an output slot. Before any
// write-back it is a null of the slot type.
func (c *CallSite) Result(id string) cty.Value {
	if v, ok := c.results[id]; ok {
		return v
	}
	if def, ok := c.fn.Output(id); ok {
		return cty.NullVal(def.Type)
	}
	return cty.NilVal
}

// Exited reports whether the exit node fired during the last call.
func (c *CallSite) Exited() bool { return c.exited }

// Returned is the value a return node handed back during the last call, or
// cty.NilVal when none did.
func (c *CallSite) Returned() cty.Value { return c.returned }

func (c *CallSite) argument(id string) cty.Value {
	if c.args == nil {
		return cty.NilVal
	}
	return c.args(id)
}

func (c *CallSite) writeBack(results map[string]cty.Value, ok bool) {
	for id, v := range results {
		c.results[id] = v
	}
	c.ok = ok
	c.exited = true
}

func (c *CallSite) onReturn(v cty.Value) {
	c.returned = v
	c.ok = true
}
