package fghcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// TypeKeywords are the bare type names that may appear as values in
// documents. They evaluate to their own names, so `type = number` and
// `type = "number"` mean the same thing.
var TypeKeywords = []string{"string", "number", "bool", "any"}

// TypeFromExpr converts an HCL type expression (`number`, `list(string)`,
// `any`, a quoted type name) into a cty.Type.
func TypeFromExpr(expr hcl.Expression) (cty.Type, hcl.Diagnostics) {
	if _, d := hcl.AbsTraversalForExpr(expr); !d.HasErrors() {
		return typeexpr.TypeConstraint(expr)
	}
	if _, d := hcl.ExprCall(expr); !d.HasErrors() {
		return typeexpr.TypeConstraint(expr)
	}

	// Anything else must be a literal string holding a type expression.
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilType, diags
	}
	if v.Type() != cty.String || v.IsNull() {
		return cty.NilType, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid type specification",
			Detail:   "A type must be a type keyword like string, number, bool or any, or a string holding one.",
			Subject:  expr.Range().Ptr(),
		}}
	}
	t, err := ParseType(v.AsString())
	if err != nil {
		return cty.NilType, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid type specification",
			Detail:   err.Error(),
			Subject:  expr.Range().Ptr(),
		}}
	}
	return t, nil
}

// ParseType parses a type written as text, such as "number" or
// "map(string)".
func ParseType(s string) (cty.Type, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(s), "<type>", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilType, fmt.Errorf("parse type %q: %w", s, diags)
	}
	t, diags := typeexpr.TypeConstraint(expr)
	if diags.HasErrors() {
		return cty.NilType, fmt.Errorf("unsupported type %q: %w", s, diags)
	}
	return t, nil
}

// TypeName renders t the way it is written in documents.
func TypeName(t cty.Type) string {
	if t == cty.NilType {
		return ""
	}
	return typeexpr.TypeString(t)
}
