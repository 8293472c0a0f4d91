package builder

import (
	"context"
	"fmt"

	"github.com/specialistvlad/flowgridgo/internal/ctxlog"
	"github.com/specialistvlad/flowgridgo/internal/dag"
	"github.com/specialistvlad/flowgridgo/internal/model"
	"github.com/zclconf/go-cty/cty"
)

// FunctionAttr is the node attribute that names a function the node depends
// on at build time.
const FunctionAttr = "function"

// functionOrder returns the document's function names, callees first.
func functionOrder(ctx context.Context, doc *model.Document) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	deps := dag.New()
	for _, fn := range doc.Functions {
		deps.AddNode(fn.Name)
	}

	for _, fn := range doc.Functions {
		for _, callee := range referencedFunctions(&fn.Body) {
			if doc.Function(callee) == nil {
				// The node factory reports unknown callees with context.
				continue
			}
			logger.Debug("Linking function reference.", "function", fn.Name, "callee", callee)
			if err := deps.AddEdge(callee, fn.Name); err != nil {
				return nil, fmt.Errorf("function %q: %w", fn.Name, err)
			}
		}
	}

	order, err := deps.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("error validating function references: %w", err)
	}
	return order, nil
}

// referencedFunctions lists the names held by the `function` attributes of a
// body's nodes, in declaration order and without repeats.
func referencedFunctions(body *model.Body) []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range body.Nodes {
		v, ok := n.Attrs[FunctionAttr]
		if !ok || v.IsNull() || !v.IsKnown() || !v.Type().Equals(cty.String) {
			continue
		}
		name := v.AsString()
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
