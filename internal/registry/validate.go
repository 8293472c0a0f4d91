package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/flowgridgo/internal/ctxlog"
	"github.com/specialistvlad/flowgridgo/internal/model"
)

// ValidateDocument checks that every node type referenced by doc is
// registered.
func (r *Registry) ValidateDocument(ctx context.Context, doc *model.Document) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	check := func(owner string, body *model.Body) {
		for _, n := range body.Nodes {
			if _, ok := r.types[n.Type]; !ok {
				errs = append(errs, fmt.Sprintf("%s: node '%s' uses unknown type '%s'", owner, n.ID, n.Type))
			}
		}
	}
	for _, g := range doc.Graphs {
		check("graph '"+g.Name+"'", &g.Body)
	}
	for _, f := range doc.Functions {
		check("function '"+f.Name+"'", &f.Body)
	}

	if len(errs) > 0 {
		logger.Debug("Known node types.", "types", r.Types())
		return fmt.Errorf("%w:\n- %s", ErrUnknownNodeType, strings.Join(errs, "\n- "))
	}
	return nil
}
