package port

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ValueOutput is a value source. Its function runs on every pull.
type ValueOutput struct {
	header
	typ cty.Type
	fn  func() cty.Value
}

// NewValueOutput creates a value output backed by fn. A nil fn yields null
// values of the declared type.
func NewValueOutput(id, name string, typ cty.Type, fn func() cty.Value) *ValueOutput {
	return &ValueOutput{header: header{id: id, name: name}, typ: typ, fn: fn}
}

func (o *ValueOutput) Kind() Kind     { return KindValueOutput }
func (o *ValueOutput) Type() cty.Type { return o.typ }

// Value evaluates the backing function.
func (o *ValueOutput) Value() cty.Value {
	if o.fn == nil {
		return cty.NullVal(o.typ)
	}
	return o.fn()
}

// ValueInput reads from at most one ValueOutput, falling back to a node-local
// default while unconnected.
type ValueInput struct {
	header
	typ    cty.Type
	source *ValueOutput
	def    cty.Value
}

// NewValueInput creates an unconnected value input whose default is a null of
// the declared type.
func NewValueInput(id, name string, typ cty.Type) *ValueInput {
	return &ValueInput{header: header{id: id, name: name}, typ: typ, def: cty.NullVal(typ)}
}

func (in *ValueInput) Kind() Kind     { return KindValueInput }
func (in *ValueInput) Type() cty.Type { return in.typ }

// Bind connects the input to src.
func (in *ValueInput) Bind(src *ValueOutput) error {
	if in.source != nil {
		return fmt.Errorf("%w: value input %q", ErrAlreadyBound, in.id)
	}
	if !Compatible(src.Type(), in.typ) {
		return fmt.Errorf("%w: %s cannot feed %s", ErrIncompatibleType, src.Type().FriendlyName(), in.typ.FriendlyName())
	}
	in.source = src
	return nil
}

// Unbind drops the current source, if any.
func (in *ValueInput) Unbind() { in.source = nil }

// IsConnected reports whether a source is bound.
func (in *ValueInput) IsConnected() bool { return in.source != nil }

// Source returns the bound output, or nil.
func (in *ValueInput) Source() *ValueOutput { return in.source }

// SetDefault sets the value returned while unconnected. The value is
// converted to the declared type.
func (in *ValueInput) SetDefault(v cty.Value) error {
	conv, err := convert.Convert(v, in.typ)
	if err != nil {
		return fmt.Errorf("default for %q: %w", in.id, err)
	}
	in.def = conv
	return nil
}

// Default returns the unconnected value.
func (in *ValueInput) Default() cty.Value { return in.def }

// Pull evaluates the connected source and converts its result to the declared
// type. Unconnected inputs return their default.
func (in *ValueInput) Pull() (cty.Value, error) {
	if in.source == nil {
		return in.def, nil
	}
	v := in.source.Value()
	if v.Type() == cty.NilType {
		return cty.NullVal(in.typ), nil
	}
	conv, err := convert.Convert(v, in.typ)
	if err != nil {
		return cty.NullVal(in.typ), fmt.Errorf("value input %q: %w", in.id, err)
	}
	return conv, nil
}

// Value is Pull without the error; a failed conversion reads as null.
func (in *ValueInput) Value() cty.Value {
	v, _ := in.Pull()
	return v
}
