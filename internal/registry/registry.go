package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/model"
)

// ErrUnknownNodeType is returned for node declarations whose type was never
// registered.
var ErrUnknownNodeType = errors.New("unknown node type")

// Module is the interface that all node modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Env is what factories may consult while building a node.
type Env interface {
	// Function returns the built definition of a named function.
	Function(name string) (*graph.Function, bool)
	// Options are the limits the graphs are built with.
	Options() graph.Options
}

// Factory builds one node from its declaration.
type Factory func(spec *model.NodeSpec, env Env) (graph.Node, error)

// NodeType describes one registered node type.
type NodeType struct {
	Name    string
	Factory Factory
}

// Registry holds the node types of a single application instance.
type Registry struct {
	types map[string]*NodeType
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		types: make(map[string]*NodeType),
	}
}

// NewWithModules creates a registry populated by modules, in order.
func NewWithModules(modules ...Module) *Registry {
	r := New()
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterNode registers a factory for a node type. Registering the same
// name twice is a programming error and panics.
func (r *Registry) RegisterNode(name string, factory Factory) {
	if _, exists := r.types[name]; exists {
		panic(fmt.Sprintf("node type '%s' already registered", name))
	}
	if factory == nil {
		panic(fmt.Sprintf("node type '%s' registered without a factory", name))
	}
	slog.Debug("Registering node type.", "type", name)
	r.types[name] = &NodeType{Name: name, Factory: factory}
}

// Lookup returns a registered node type.
func (r *Registry) Lookup(name string) (*NodeType, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Types returns the sorted names of all registered node types.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Create builds the node declared by spec.
func (r *Registry) Create(spec *model.NodeSpec, env Env) (graph.Node, error) {
	t, ok := r.types[spec.Type]
	if !ok {
		return nil, fmt.Errorf("%w %q for node %q", ErrUnknownNodeType, spec.Type, spec.ID)
	}
	n, err := t.Factory(spec, env)
	if err != nil {
		return nil, fmt.Errorf("node %q (%s): %w", spec.ID, spec.Type, err)
	}
	return n, nil
}
