// Package port implements the four typed endpoints a node exposes: value
// outputs and inputs for the pull-based data channel, and flow outputs and
// inputs for the push-based control channel.
package port

import (
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Kind distinguishes the four port variants.
type Kind int

const (
	KindValueOutput Kind = iota
	KindValueInput
	KindFlowOutput
	KindFlowInput
)

func (k Kind) String() string {
	switch k {
	case KindValueOutput:
		return "value output"
	case KindValueInput:
		return "value input"
	case KindFlowOutput:
		return "flow output"
	case KindFlowInput:
		return "flow input"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsFlow reports whether the kind belongs to the control channel.
func (k Kind) IsFlow() bool { return k == KindFlowOutput || k == KindFlowInput }

// IsOutput reports whether the kind is a connection source.
func (k Kind) IsOutput() bool { return k == KindValueOutput || k == KindFlowOutput }

var (
	// ErrAlreadyBound is returned when an input-side binding is attempted on
	// a port that already has one.
	ErrAlreadyBound = errors.New("port already bound")

	// ErrIncompatibleType is returned when a value source cannot feed an input
	// of the declared type.
	ErrIncompatibleType = errors.New("incompatible port types")
)

// Port is the common view of every port kind.
type Port interface {
	ID() string
	Name() string
	Kind() Kind
	// Type is the declared value type. Flow ports report cty.NilType.
	Type() cty.Type
}

type header struct {
	id   string
	name string
}

func (h header) ID() string { return h.id }

func (h header) Name() string {
	if h.name == "" {
		return h.id
	}
	return h.name
}

// Compatible reports whether a value of type src may feed an input declared as
// dst. Dynamic types on either side defer the check to pull time.
func Compatible(src, dst cty.Type) bool {
	if src == cty.NilType || dst == cty.NilType {
		return false
	}
	if src.Equals(dst) || src.Equals(cty.DynamicPseudoType) || dst.Equals(cty.DynamicPseudoType) {
		return true
	}
	return convert.GetConversion(src, dst) != nil
}
