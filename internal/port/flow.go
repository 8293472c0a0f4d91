package port

import (
	"fmt"

	"github.com/specialistvlad/flowgridgo/internal/flow"
	"github.com/zclconf/go-cty/cty"
)

// FlowOutput transfers control to at most one FlowInput.
type FlowOutput struct {
	header
	target *FlowInput
}

// NewFlowOutput creates an unconnected flow output.
func NewFlowOutput(id, name string) *FlowOutput {
	return &FlowOutput{header: header{id: id, name: name}}
}

func (o *FlowOutput) Kind() Kind     { return KindFlowOutput }
func (o *FlowOutput) Type() cty.Type { return cty.NilType }

// Bind connects the output to target.
func (o *FlowOutput) Bind(target *FlowInput) error {
	if o.target != nil {
		return fmt.Errorf("%w: flow output %q", ErrAlreadyBound, o.id)
	}
	o.target = target
	return nil
}

// Unbind drops the current target, if any.
func (o *FlowOutput) Unbind() { o.target = nil }

// IsConnected reports whether a target is bound.
func (o *FlowOutput) IsConnected() bool { return o.target != nil }

// Call synchronously invokes the connected input. Calling an unconnected
// output, or calling with a flow that has already returned, does nothing.
func (o *FlowOutput) Call(f *flow.Flow) {
	if o.target == nil || f.Returned() {
		return
	}
	o.target.Call(f)
}

// FlowInput wraps a node callback on the control channel.
type FlowInput struct {
	header
	fn   func(*flow.Flow)
	fail func(error)
}

// NewFlowInput creates a flow input. fail receives depth-guard violations and
// recovered panics; it may be nil.
func NewFlowInput(id, name string, fn func(*flow.Flow), fail func(error)) *FlowInput {
	return &FlowInput{header: header{id: id, name: name}, fn: fn, fail: fail}
}

func (in *FlowInput) Kind() Kind     { return KindFlowInput }
func (in *FlowInput) Type() cty.Type { return cty.NilType }

// Call runs the callback with f. Panics inside the callback are contained
// here and reported through the failure hook, so they never unwind past the
// caller's flow output.
func (in *FlowInput) Call(f *flow.Flow) {
	if in.fn == nil {
		return
	}
	if err := f.Enter(); err != nil {
		in.report(fmt.Errorf("flow input %q: %w", in.id, err))
		return
	}
	defer f.Leave()
	defer func() {
		if r := recover(); r != nil {
			in.report(&PanicError{Port: in.id, Value: r})
		}
	}()
	in.fn(f)
}

func (in *FlowInput) report(err error) {
	if in.fail != nil {
		in.fail(err)
	}
}

// PanicError wraps a value recovered from a flow callback.
type PanicError struct {
	Port  string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in flow input %q: %v", e.Port, e.Value)
}

// Unwrap exposes the recovered value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
