package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/flowgridgo/internal/ctxlog"
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/model"
	"github.com/specialistvlad/flowgridgo/internal/registry"
	"github.com/specialistvlad/flowgridgo/internal/task"
	"github.com/zclconf/go-cty/cty"
)

// ErrUnknownFunction is returned when a task or node references a function
// the document does not define.
var ErrUnknownFunction = errors.New("unknown function")

// Build constructs a complete, validated program from a document.
func Build(ctx context.Context, doc *model.Document, r *registry.Registry, opts graph.Options) (*Program, error) {
	logger := ctxlog.FromContext(ctx).With("component", "builder")
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Starting program construction.")

	if err := r.ValidateDocument(ctx, doc); err != nil {
		return nil, err
	}

	order, err := functionOrder(ctx, doc)
	if err != nil {
		return nil, err
	}
	logger.Debug("Function order resolved.", "order", order)

	p := newProgram(opts)
	var errs []error
	for _, name := range order {
		fn, err := buildFunction(ctx, doc.Function(name), r, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p.functions[name] = fn
		p.order = append(p.order, name)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for _, spec := range doc.Graphs {
		g, err := buildGraph(ctx, spec, r, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p.Graphs = append(p.Graphs, g)
	}

	for _, spec := range doc.Tasks {
		t, err := buildTask(spec, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p.Tasks = append(p.Tasks, t)
	}
	if len(errs) > 0 {
		p.Close()
		return nil, errors.Join(errs...)
	}

	logger.Info("Program construction successful.", "graphs", len(p.Graphs), "functions", len(p.order), "tasks", len(p.Tasks))
	return p, nil
}

func buildFunction(ctx context.Context, spec *model.FunctionSpec, r *registry.Registry, p *Program) (*graph.Function, error) {
	fn := graph.NewFunction(spec.Name)
	fn.Graph().SetOptions(p.opts)
	if spec.Returns != cty.NilType {
		fn.SetReturnType(spec.Returns)
	}

	var errs []error
	for _, def := range spec.Inputs {
		if !fn.AddInputDefinition(graph.PortDefinition{ID: def.ID, Name: def.Name, Type: def.Type}) {
			errs = append(errs, fmt.Errorf("input %q: slot id %q is already used or reserved", def.Name, def.ID))
		}
	}
	for _, def := range spec.Outputs {
		if !fn.AddOutputDefinition(graph.PortDefinition{ID: def.ID, Name: def.Name, Type: def.Type}) {
			errs = append(errs, fmt.Errorf("output %q: slot id %q is already used or reserved", def.Name, def.ID))
		}
	}
	for portID, v := range spec.ExitDefaults {
		fn.Exit().SetInputDefault(portID, v)
	}

	if err := populate(ctx, fn.Graph(), &spec.Body, r, p); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("function %q (%s): %w", spec.Name, spec.FSInformation, err)
	}
	return fn, nil
}

func buildGraph(ctx context.Context, spec *model.GraphSpec, r *registry.Registry, p *Program) (*graph.Graph, error) {
	g := graph.New(spec.Name)
	g.SetOptions(p.opts)
	if err := populate(ctx, g, &spec.Body, r, p); err != nil {
		return nil, fmt.Errorf("graph %q (%s): %w", spec.Name, spec.FSInformation, err)
	}
	return g, nil
}

// populate creates the body's nodes, applies their defaults, wires the
// connections and validates the result.
func populate(ctx context.Context, g *graph.Graph, body *model.Body, r *registry.Registry, p *Program) error {
	var errs []error
	for _, spec := range body.Nodes {
		n, err := r.Create(spec, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for portID, v := range spec.Defaults {
			n.SetInputDefault(portID, v)
		}
		if err := g.AddNode(n); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for _, c := range body.Connections {
		g.Connect(graph.Connection{
			SourceNode: c.From.Node,
			SourcePort: c.From.Port,
			TargetNode: c.To.Node,
			TargetPort: c.To.Port,
		})
	}
	return g.Validate(ctx)
}

func buildTask(spec *model.TaskSpec, p *Program) (*task.Task, error) {
	fn, ok := p.Function(spec.Function)
	if !ok {
		return nil, fmt.Errorf("task %q (%s): %w %q", spec.Name, spec.FSInformation, ErrUnknownFunction, spec.Function)
	}
	kind := task.Condition
	if spec.Kind == model.TaskAction {
		kind = task.Action
	}
	return task.New(spec.Name, kind, fn, spec.Params, spec.Every), nil
}
