package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"github.com/specialistvlad/flowgridgo/internal/ctxlog"
	"github.com/specialistvlad/flowgridgo/internal/flow"
	"github.com/specialistvlad/flowgridgo/internal/port"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// DefaultMaxCallDepth bounds recursion through named functions.
const DefaultMaxCallDepth = 256

// Options are the engine limits applied to a graph and its clones.
type Options struct {
	// MaxFlowDepth caps nested flow input calls on one flow token. Zero
	// disables the guard.
	MaxFlowDepth int
	// MaxCallDepth caps recursion through named functions. Zero disables
	// the guard.
	MaxCallDepth int
}

// DefaultOptions returns the limits used by New.
func DefaultOptions() Options {
	return Options{MaxFlowDepth: flow.DefaultMaxDepth, MaxCallDepth: DefaultMaxCallDepth}
}

// Connection is a directed wire from an output port to an input port.
type Connection struct {
	SourceNode string
	SourcePort string
	TargetNode string
	TargetPort string
}

func (c Connection) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", c.SourceNode, c.SourcePort, c.TargetNode, c.TargetPort)
}

// Graph is an ordered node collection plus its wiring and lifecycle state.
type Graph struct {
	name        string
	opts        Options
	nodes       []Node
	index       map[string]int
	connections []Connection

	// owner is set for graphs that belong to a Function.
	owner *Function

	ctx     context.Context
	logger  *slog.Logger
	ec      *ExecContext
	running bool

	// Phase-1 side tables, built once.
	hasInitialized bool
	updatables     []Updatable
	nested         []Nested
	callables      map[string]CallableByName

	components map[reflect.Type]any
	failures   []*NodeError
}

// New creates an empty, stopped graph.
func New(name string) *Graph {
	return &Graph{
		name:  name,
		opts:  DefaultOptions(),
		index: make(map[string]int),
	}
}

func (g *Graph) Name() string { return g.name }

// Options returns the engine limits.
func (g *Graph) Options() Options { return g.opts }

// SetOptions replaces the engine limits. It takes effect on the next flow.
func (g *Graph) SetOptions(o Options) { g.opts = o }

// Function returns the function this graph belongs to, or nil.
func (g *Graph) Function() *Function { return g.owner }

// Running reports whether the graph has been started and not stopped.
func (g *Graph) Running() bool { return g.running }

// Exec returns the bound execution context.
func (g *Graph) Exec() *ExecContext { return g.ec }

// AddNode appends n to the node arena.
func (g *Graph) AddNode(n Node) error {
	if n.ID() == "" {
		return fmt.Errorf("%w: empty id", ErrUnknownNode)
	}
	if _, exists := g.index[n.ID()]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, n.ID())
	}
	g.index[n.ID()] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return nil
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Nodes returns the nodes in declaration order.
func (g *Graph) Nodes() []Node { return slices.Clone(g.nodes) }

// Connect records a connection. It is resolved when the graph binds.
func (g *Graph) Connect(c Connection) {
	g.connections = append(g.connections, c)
}

// Connections returns the recorded connections in order.
func (g *Graph) Connections() []Connection { return slices.Clone(g.connections) }

// Validate declares every node's ports and checks each connection, returning
// all problems joined. Invalid connections are skipped when the graph binds.
func (g *Graph) Validate(ctx context.Context) error {
	if g.running {
		return ErrAlreadyRunning
	}
	g.useContext(ctx)
	g.declare()

	var errs []error
	for _, c := range g.connections {
		if err := g.connect(c); err != nil {
			errs = append(errs, &ConnectionError{Connection: c, Err: err})
		}
	}
	return errors.Join(errs...)
}

// Start runs the two-phase initialization and marks the graph running.
func (g *Graph) Start(ctx context.Context, ec *ExecContext) error {
	if g.running {
		return ErrAlreadyRunning
	}
	g.useContext(ctx)
	g.bindContext(ec)
	g.failures = nil
	logger := g.log()
	logger.Debug("Starting graph.", "nodes", len(g.nodes), "connections", len(g.connections))

	// Phase 1: nested instances first, then the one-time tables.
	var started []Nested
	for _, n := range g.nodes {
		nested, ok := n.(Nested)
		if !ok {
			continue
		}
		if err := nested.StartNested(ctx, ec); err != nil {
			for _, s := range started {
				s.StopNested()
			}
			return fmt.Errorf("start nested instance of node %q: %w", n.ID(), err)
		}
		started = append(started, nested)
	}
	if !g.hasInitialized {
		g.buildTables()
		g.hasInitialized = true
		logger.Debug("Graph tables built.", "updatables", len(g.updatables), "callables", len(g.callables))
	}

	// Phase 2: declare ports and resolve connections.
	g.bind()
	g.running = true

	for _, n := range g.nodes {
		if l, ok := n.(StartListener); ok {
			g.safely(n, func() { l.OnGraphStarted(g) })
		}
	}
	logger.Debug("Graph started.")
	return nil
}

// Update polls every updatable node once, in registration order, then ticks
// the nested instances.
func (g *Graph) Update() {
	if !g.running {
		return
	}
	for _, u := range g.updatables {
		g.safely(u, u.Update)
	}
	for _, n := range g.nested {
		g.safely(n, n.UpdateNested)
	}
}

// Stop notifies stop listeners, stops nested instances, and marks the graph
// stopped. Stopping a stopped graph is a no-op.
func (g *Graph) Stop() {
	if !g.running {
		return
	}
	for _, n := range g.nodes {
		if l, ok := n.(StopListener); ok {
			g.safely(n, func() { l.OnGraphStopped(g) })
		}
	}
	for _, n := range g.nodes {
		if nested, ok := n.(Nested); ok {
			nested.StopNested()
		}
	}
	g.running = false
	g.log().Debug("Graph stopped.")
}

// Rebind repeats the binding pass on a running graph. It is used after a
// signature change alters the ports of some node.
func (g *Graph) Rebind() {
	if !g.running {
		return
	}
	g.bind()
}

// CallFunction invokes the callable registered under name. An unknown name
// yields cty.NilVal.
func (g *Graph) CallFunction(name string, args ...cty.Value) cty.Value {
	c, ok := g.callables[name]
	if !ok {
		g.log().Debug("Function not found.", "function", name)
		return cty.NilVal
	}
	return c.Invoke(args)
}

// CallFunctionAs calls a named function and decodes its result into T. The
// boolean is false on a miss, a null result, or a result that does not fit T.
func CallFunctionAs[T any](g *Graph, name string, args ...cty.Value) (T, bool) {
	var out T
	v := g.CallFunction(name, args...)
	if v.Type() == cty.NilType || v.IsNull() || !v.IsWhollyKnown() {
		return out, false
	}
	if err := gocty.FromCtyValue(v, &out); err != nil {
		return out, false
	}
	return out, true
}

// Failures returns the node failures reported since the last start.
func (g *Graph) Failures() []*NodeError { return slices.Clone(g.failures) }

// Clone deep-copies the node arena and the wiring. The clone is stopped and
// shares no mutable state with g.
func (g *Graph) Clone() *Graph {
	c := New(g.name)
	c.opts = g.opts
	for _, n := range g.nodes {
		if err := c.AddNode(n.Clone()); err != nil {
			panic(err)
		}
	}
	c.connections = slices.Clone(g.connections)
	return c
}

func (g *Graph) buildTables() {
	g.updatables = nil
	g.nested = nil
	g.callables = make(map[string]CallableByName)
	for _, n := range g.nodes {
		if u, ok := n.(Updatable); ok {
			g.updatables = append(g.updatables, u)
		}
		if nn, ok := n.(Nested); ok {
			g.nested = append(g.nested, nn)
		}
		if c, ok := n.(CallableByName); ok {
			name := c.FunctionName()
			if _, dup := g.callables[name]; dup {
				g.log().Warn("Duplicate callable name, keeping the first.", "function", name, "node_id", n.ID())
				continue
			}
			g.callables[name] = c
		}
	}
}

// declare attaches every node and has it declare its ports afresh.
func (g *Graph) declare() {
	for _, n := range g.nodes {
		b := n.base()
		b.attach(g)
		b.resetPorts()
		n.RegisterPorts()
	}
}

func (g *Graph) bind() {
	g.declare()
	for _, c := range g.connections {
		if err := g.connect(c); err != nil {
			g.log().Warn("Connection not honored.", "connection", c.String(), "error", err)
		}
	}
}

func (g *Graph) connect(c Connection) error {
	src, err := g.resolve(c.SourceNode, c.SourcePort)
	if err != nil {
		return err
	}
	dst, err := g.resolve(c.TargetNode, c.TargetPort)
	if err != nil {
		return err
	}
	if !src.Kind().IsOutput() || dst.Kind().IsOutput() {
		return fmt.Errorf("%w: %s to %s", ErrDirection, src.Kind(), dst.Kind())
	}
	if src.Kind().IsFlow() != dst.Kind().IsFlow() {
		return fmt.Errorf("%w: %s to %s", ErrChannelMismatch, src.Kind(), dst.Kind())
	}

	switch s := src.(type) {
	case *port.ValueOutput:
		d := dst.(*port.ValueInput)
		if !port.Compatible(s.Type(), d.Type()) {
			return fmt.Errorf("%w: %s to %s", ErrTypeMismatch, s.Type().FriendlyName(), d.Type().FriendlyName())
		}
		return d.Bind(s)
	case *port.FlowOutput:
		return s.Bind(dst.(*port.FlowInput))
	default:
		return fmt.Errorf("%w: unsupported port %T", ErrDirection, src)
	}
}

func (g *Graph) resolve(nodeID, portID string) (port.Port, error) {
	n, ok := g.Node(nodeID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, nodeID)
	}
	p, ok := n.base().Port(portID)
	if !ok {
		return nil, fmt.Errorf("%w: %q on node %q", ErrUnknownPort, portID, nodeID)
	}
	return p, nil
}

// safely runs fn, converting a panic into a failure of node n.
func (g *Graph) safely(n Node, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			n.base().Fail(fmt.Errorf("%w: %v", ErrNodePanic, r))
		}
	}()
	fn()
}

func (g *Graph) recordFailure(b *Base, err error) {
	ne := &NodeError{NodeID: b.id, NodeType: b.typ, Err: err}
	g.failures = append(g.failures, ne)
	g.log().Error("Node failed.", "node_id", b.id, "node_type", b.typ, "error", err)
}

func (g *Graph) useContext(ctx context.Context) {
	g.ctx = ctx
	g.logger = ctxlog.FromContext(ctx).With("component", "graph", "graph", g.name)
}

func (g *Graph) log() *slog.Logger {
	if g.logger == nil {
		return slog.Default()
	}
	return g.logger
}
