package task

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/flowgridgo/internal/ctxlog"
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Kind selects how a task's result is interpreted.
type Kind int

const (
	// Condition tasks report the function's result flag.
	Condition Kind = iota
	// Action tasks report whether the function completed.
	Action
)

func (k Kind) String() string {
	switch k {
	case Condition:
		return "condition"
	case Action:
		return "action"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Parameter binds one signature slot to a blackboard key.
type Parameter struct {
	SlotID string
	Name   string
	Type   cty.Type
	Key    string
	Output bool
}

// Task is a function bound to blackboard parameters.
type Task struct {
	name  string
	kind  Kind
	every int

	fn     *graph.Function
	site   *graph.CallSite
	cancel func()

	keys   map[string]string
	params []Parameter

	// ctx and ec of the call in progress, read by the lazy argument source.
	ctx context.Context
	ec  *graph.ExecContext
}

// New binds fn to the blackboard. keys maps slot names to blackboard keys;
// slots without an entry use their own name. every runs the task on every
// n-th tick; values below 1 mean every tick.
func New(name string, kind Kind, fn *graph.Function, keys map[string]string, every int) *Task {
	if every < 1 {
		every = 1
	}
	t := &Task{name: name, kind: kind, every: every, keys: keys}
	t.site = graph.NewCallSite(nil, t.argument)
	t.SetFunction(fn)
	return t
}

func (t *Task) Name() string { return t.name }
func (t *Task) Kind() Kind   { return t.kind }

// Function returns the bound definition.
func (t *Task) Function() *graph.Function { return t.fn }

// Parameters returns a copy of the current parameter list.
func (t *Task) Parameters() []Parameter { return slices.Clone(t.params) }

// Due reports whether the task runs on the given 1-based tick.
func (t *Task) Due(tick uint64) bool { return tick%uint64(t.every) == 0 }

// SetFunction swaps the bound function. A different function gets a fresh
// clone on the next call, and the parameters follow its signature.
func (t *Task) SetFunction(fn *graph.Function) {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.fn = fn
	t.site.SetFunction(fn)
	if fn != nil {
		t.cancel = fn.Subscribe(t.RegisterParameters)
	}
	t.RegisterParameters()
}

// RegisterParameters syncs the parameter list with the signature: missing
// slots are added, stale ones dropped, and names and types refreshed.
// Blackboard keys of surviving slots are kept.
func (t *Task) RegisterParameters() {
	if t.fn == nil {
		t.params = nil
		return
	}
	var next []Parameter
	sync := func(defs []graph.PortDefinition, output bool) {
		for _, def := range defs {
			p := Parameter{SlotID: def.ID, Name: def.Name, Type: def.Type, Output: output, Key: t.keyFor(def.Name)}
			if i := slices.IndexFunc(t.params, func(old Parameter) bool {
				return old.SlotID == def.ID && old.Output == output
			}); i >= 0 {
				p.Key = t.params[i].Key
			}
			next = append(next, p)
		}
	}
	sync(t.fn.Inputs(), false)
	sync(t.fn.Outputs(), true)
	t.params = next
}

// Check runs a condition and returns the function's result flag.
func (t *Task) Check(ctx context.Context, ec *graph.ExecContext) bool {
	ok := t.call(ctx, ec)
	ctxlog.FromContext(ctx).Debug("Condition checked.", "task", t.name, "result", ok)
	return ok
}

// Execute runs an action and reports success.
func (t *Task) Execute(ctx context.Context, ec *graph.ExecContext) bool {
	ok := t.call(ctx, ec)
	ctxlog.FromContext(ctx).Debug("Action executed.", "task", t.name, "ok", ok)
	return ok
}

// Run dispatches on the task kind.
func (t *Task) Run(ctx context.Context, ec *graph.ExecContext) bool {
	if t.kind == Action {
		return t.Execute(ctx, ec)
	}
	return t.Check(ctx, ec)
}

// Close releases the live instance and the signature subscription.
func (t *Task) Close() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.site.Stop()
}

func (t *Task) call(ctx context.Context, ec *graph.ExecContext) bool {
	if t.fn == nil {
		return false
	}
	t.ctx, t.ec = ctx, ec
	defer func() { t.ctx, t.ec = nil, nil }()

	ok := t.site.Call(ctx, ec)
	if t.site.Exited() {
		t.writeBack(ctx, ec)
	}
	return ok
}

func (t *Task) argument(slotID string) cty.Value {
	p, ok := t.param(slotID, false)
	if !ok || t.ec == nil || t.ec.Blackboard == nil {
		return cty.NilVal
	}
	v, found, err := t.ec.Blackboard.Get(t.ctx, p.Key)
	if err != nil {
		ctxlog.FromContext(t.ctx).Warn("Blackboard read failed.", "task", t.name, "key", p.Key, "error", err)
		return cty.NilVal
	}
	if !found {
		return cty.NilVal
	}
	return v
}

func (t *Task) writeBack(ctx context.Context, ec *graph.ExecContext) {
	if ec == nil || ec.Blackboard == nil {
		return
	}
	logger := ctxlog.FromContext(ctx)
	for _, p := range t.params {
		if !p.Output {
			continue
		}
		v := t.site.Result(p.SlotID)
		if v.Type() == cty.NilType {
			continue
		}
		if conv, err := convert.Convert(v, p.Type); err == nil {
			v = conv
		}
		if err := ec.Blackboard.Set(ctx, p.Key, v); err != nil {
			logger.Warn("Blackboard write failed.", "task", t.name, "key", p.Key, "error", err)
		}
	}
}

func (t *Task) param(slotID string, output bool) (Parameter, bool) {
	for _, p := range t.params {
		if p.SlotID == slotID && p.Output == output {
			return p, true
		}
	}
	return Parameter{}, false
}

func (t *Task) keyFor(name string) string {
	if k, ok := t.keys[name]; ok && k != "" {
		return k
	}
	return name
}
