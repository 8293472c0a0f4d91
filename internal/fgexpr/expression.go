package fgexpr

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/flowgridgo/internal/fghcl"
	"github.com/zclconf/go-cty/cty"
)

// InputRoot is the variable that namespaces expression inputs: `in.a + 1`
// reads the input named "a".
const InputRoot = "in"

var (
	// ErrUnknownVariable is returned for references outside of `in.*`.
	ErrUnknownVariable = errors.New("unknown variable")
	// ErrUnknownFunction is returned for calls to functions that are not in
	// the shared table.
	ErrUnknownFunction = errors.New("unknown function")
)

// Expression is a compiled HCL expression with a known set of inputs.
type Expression struct {
	source string
	expr   hcl.Expression
	inputs []string
}

// Compile parses src and checks that every reference is an input or a type
// keyword and that every function is known.
func Compile(src string) (*Expression, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "<expr>", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse expression %q: %w", src, diags)
	}

	c := NewContainer()
	c.Add(expr)

	var errs []error
	var inputs []string
	for _, ref := range c.References() {
		root := ref.RootName()
		switch {
		case root == InputRoot:
			name := fghcl.AttrName(ref)
			if name == "" {
				errs = append(errs, fmt.Errorf("%w: %q must name an input, as in %s.value", ErrUnknownVariable, fghcl.TraversalKey(ref), InputRoot))
				continue
			}
			if !slices.Contains(inputs, name) {
				inputs = append(inputs, name)
			}
		case slices.Contains(fghcl.TypeKeywords, root):
		default:
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownVariable, fghcl.TraversalKey(ref)))
		}
	}

	known := fghcl.Functions()
	for _, name := range c.CalledFunctions() {
		if _, ok := known[name]; !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownFunction, name))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	slices.Sort(inputs)
	return &Expression{source: src, expr: expr, inputs: inputs}, nil
}

// Source returns the text the expression was compiled from.
func (e *Expression) Source() string { return e.source }

// Inputs returns the sorted input names the expression reads.
func (e *Expression) Inputs() []string { return slices.Clone(e.inputs) }

// Eval evaluates the expression. Missing inputs evaluate as dynamic nulls.
func (e *Expression) Eval(inputs map[string]cty.Value) (cty.Value, error) {
	attrs := make(map[string]cty.Value, len(e.inputs))
	for _, name := range e.inputs {
		v, ok := inputs[name]
		if !ok || v.Type() == cty.NilType {
			v = cty.NullVal(cty.DynamicPseudoType)
		}
		attrs[name] = v
	}

	ctx := fghcl.EvalContext().NewChild()
	ctx.Variables = map[string]cty.Value{InputRoot: cty.ObjectVal(attrs)}

	v, diags := e.expr.Value(ctx)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("evaluate %q: %w", e.source, diags)
	}
	return v, nil
}
