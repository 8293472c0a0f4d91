package fghcl

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// TraversalKey generates a stable, canonical string representation for an
// hcl.Traversal, suitable for use as a map key.
func TraversalKey(t hcl.Traversal) string {
	// e.g., in.foo[0].bar
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// AttrName returns the name of the first attribute step after the root of t,
// or "" when t has no such step.
func AttrName(t hcl.Traversal) string {
	if len(t) < 2 {
		return ""
	}
	if attr, ok := t[1].(hcl.TraverseAttr); ok {
		return attr.Name
	}
	return ""
}
