package graph

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/specialistvlad/flowgridgo/internal/flow"
	"github.com/specialistvlad/flowgridgo/internal/port"
	"github.com/zclconf/go-cty/cty"
)

// Node is a unit of the graph owning zero or more ports. Concrete nodes embed
// Base, which supplies identity, port bookkeeping, and the failure hook.
type Node interface {
	ID() string
	Type() string
	// RegisterPorts declares the node's ports and binds their backing logic.
	// It runs once per graph initialization and again after every signature
	// change.
	RegisterPorts()
	// Clone returns a fresh node with the same configuration and no port
	// state.
	Clone() Node
	// SetInputDefault configures the value an unconnected value input reads.
	SetInputDefault(portID string, v cty.Value)

	base() *Base
}

// Updatable nodes are polled once per tick while the graph runs.
type Updatable interface {
	Node
	Update()
}

// CallableByName nodes can be invoked through Graph.CallFunction.
type CallableByName interface {
	Node
	FunctionName() string
	Invoke(args []cty.Value) cty.Value
}

// SignatureDependent nodes derive their ports from a function signature and
// are told when it changes.
type SignatureDependent interface {
	Node
	OnSignatureChanged()
}

// Nested nodes wrap a nested graph instance that must be started before the
// node's own ports are declared. UpdateNested ticks the instance once per
// Update of the owning graph.
type Nested interface {
	Node
	StartNested(ctx context.Context, ec *ExecContext) error
	UpdateNested()
	StopNested()
}

// StartListener nodes are notified after the graph has finished starting.
type StartListener interface {
	Node
	OnGraphStarted(g *Graph)
}

// StopListener nodes are notified when the graph stops.
type StopListener interface {
	Node
	OnGraphStopped(g *Graph)
}

// Base is embedded by every node.
type Base struct {
	id  string
	typ string

	graph    *Graph
	ports    []port.Port
	byID     map[string]port.Port
	defaults map[string]cty.Value
}

// NewBase returns a Base with the given identity.
func NewBase(id, typ string) Base {
	return Base{id: id, typ: typ}
}

// CloneBase returns a copy of the identity and configured defaults, without
// any graph attachment or port state.
func (b *Base) CloneBase() Base {
	return Base{id: b.id, typ: b.typ, defaults: maps.Clone(b.defaults)}
}

func (b *Base) ID() string   { return b.id }
func (b *Base) Type() string { return b.typ }
func (b *Base) base() *Base  { return b }

// Graph returns the owning graph, or nil before the node has been attached.
func (b *Base) Graph() *Graph { return b.graph }

// Context returns the context the owning graph was started with.
func (b *Base) Context() context.Context {
	if b.graph == nil || b.graph.ctx == nil {
		return context.Background()
	}
	return b.graph.ctx
}

// Exec returns the execution context the owning graph is bound to.
func (b *Base) Exec() *ExecContext {
	if b.graph == nil {
		return nil
	}
	return b.graph.ec
}

// Logger returns the graph logger annotated with this node's identity.
func (b *Base) Logger() *slog.Logger {
	var logger *slog.Logger
	if b.graph != nil {
		logger = b.graph.log()
	} else {
		logger = slog.Default()
	}
	return logger.With("node_id", b.id, "node_type", b.typ)
}

// Fail is the node's failure-reporting hook. The failure is logged and
// recorded on the graph; it never propagates to the caller.
func (b *Base) Fail(err error) {
	if err == nil {
		return
	}
	if b.graph == nil {
		slog.Default().Error("Node failed outside of a graph.", "node_id", b.id, "error", err)
		return
	}
	b.graph.recordFailure(b, err)
}

// SetInputDefault configures the value a value input returns while it is
// unconnected. It survives re-registration.
func (b *Base) SetInputDefault(portID string, v cty.Value) {
	if b.defaults == nil {
		b.defaults = make(map[string]cty.Value)
	}
	b.defaults[portID] = v
	if p, ok := b.byID[portID].(*port.ValueInput); ok {
		b.applyDefault(p)
	}
}

// Port looks up a declared port by id.
func (b *Base) Port(id string) (port.Port, bool) {
	p, ok := b.byID[id]
	return p, ok
}

// Ports returns the declared ports in declaration order.
func (b *Base) Ports() []port.Port {
	out := make([]port.Port, len(b.ports))
	copy(out, b.ports)
	return out
}

// AddPort declares p. Declaring two ports with the same id is a programming
// error and panics.
func (b *Base) AddPort(p port.Port) {
	if b.byID == nil {
		b.byID = make(map[string]port.Port)
	}
	if _, exists := b.byID[p.ID()]; exists {
		panic(fmt.Sprintf("node %q declares port %q twice", b.id, p.ID()))
	}
	b.ports = append(b.ports, p)
	b.byID[p.ID()] = p
	if in, ok := p.(*port.ValueInput); ok {
		b.applyDefault(in)
	}
}

// AddValueOutput declares a value output backed by fn.
func (b *Base) AddValueOutput(id string, typ cty.Type, fn func() cty.Value) *port.ValueOutput {
	p := port.NewValueOutput(id, "", typ, fn)
	b.AddPort(p)
	return p
}

// AddValueInput declares a value input.
func (b *Base) AddValueInput(id string, typ cty.Type) *port.ValueInput {
	p := port.NewValueInput(id, "", typ)
	b.AddPort(p)
	return p
}

// AddFlowOutput declares a flow output.
func (b *Base) AddFlowOutput(id string) *port.FlowOutput {
	p := port.NewFlowOutput(id, "")
	b.AddPort(p)
	return p
}

// AddFlowInput declares a flow input running fn. Panics and depth-limit
// violations inside fn are reported through Fail.
func (b *Base) AddFlowInput(id string, fn func(*flow.Flow)) *port.FlowInput {
	p := port.NewFlowInput(id, "", fn, b.Fail)
	b.AddPort(p)
	return p
}

func (b *Base) applyDefault(in *port.ValueInput) {
	v, ok := b.defaults[in.ID()]
	if !ok {
		return
	}
	if err := in.SetDefault(v); err != nil {
		b.Logger().Warn("Ignoring input default.", "port", in.ID(), "error", err)
	}
}

func (b *Base) attach(g *Graph) {
	b.graph = g
}

func (b *Base) resetPorts() {
	b.ports = nil
	b.byID = nil
}
