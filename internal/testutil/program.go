package testutil

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/flowgridgo/internal/builder"
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/model"
	"github.com/specialistvlad/flowgridgo/internal/port"
	"github.com/specialistvlad/flowgridgo/internal/registry"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// ParseHCL parses and validates a single in-memory HCL document.
func ParseHCL(t *testing.T, src string) *model.Document {
	t.Helper()

	doc, err := model.ParseHCL(hclparse.NewParser(), []byte(src), t.Name()+".hcl")
	require.NoError(t, err)
	require.NoError(t, doc.Validate())
	return doc
}

// BuildHCL builds a program from an HCL document with the given modules and
// default limits.
func BuildHCL(t *testing.T, ctx context.Context, src string, modules ...registry.Module) *builder.Program {
	t.Helper()
	return BuildHCLWithOptions(t, ctx, src, graph.DefaultOptions(), modules...)
}

// BuildHCLWithOptions is BuildHCL with explicit limits.
func BuildHCLWithOptions(t *testing.T, ctx context.Context, src string, opts graph.Options, modules ...registry.Module) *builder.Program {
	t.Helper()

	p, err := builder.Build(ctx, ParseHCL(t, src), registry.NewWithModules(modules...), opts)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

// StartGraph starts a program graph by name and stops it when the test ends.
func StartGraph(t *testing.T, ctx context.Context, p *builder.Program, name string, ec *graph.ExecContext) *graph.Graph {
	t.Helper()

	g, ok := p.Graph(name)
	require.True(t, ok, "graph %q not found", name)
	require.NoError(t, g.Start(ctx, ec))
	t.Cleanup(g.Stop)
	return g
}

// BuildErr builds a program from a valid HCL document and returns the
// builder's result, for tests that expect a build failure.
func BuildErr(t *testing.T, ctx context.Context, src string, modules ...registry.Module) (*builder.Program, error) {
	t.Helper()
	return builder.Build(ctx, ParseHCL(t, src), registry.NewWithModules(modules...), graph.DefaultOptions())
}

// Output pulls a value output of a node in a running graph.
func Output(t *testing.T, g *graph.Graph, nodeID, portID string) cty.Value {
	t.Helper()

	n, ok := g.Node(nodeID)
	require.True(t, ok, "node %q not found", nodeID)
	porter, ok := n.(interface {
		Port(id string) (port.Port, bool)
	})
	require.True(t, ok)
	p, ok := porter.Port(portID)
	require.True(t, ok, "port %q not found on %q", portID, nodeID)
	out, ok := p.(*port.ValueOutput)
	require.True(t, ok, "port %q on %q is not a value output", portID, nodeID)
	return out.Value()
}
