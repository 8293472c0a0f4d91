package graph

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/specialistvlad/flowgridgo/internal/flow"
	"github.com/specialistvlad/flowgridgo/internal/port"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Reserved node ids and types of a function graph.
const (
	EntryNodeID   = "entry"
	ExitNodeID    = "exit"
	EntryNodeType = "function.entry"
	ExitNodeType  = "function.exit"
)

// Reserved port ids on the entry and exit nodes.
const (
	EntryFlowPort  = "out"
	ExitFlowPort   = "in"
	ExitResultPort = "result"
)

// PortDefinition describes one slot of a function signature.
type PortDefinition struct {
	ID   string
	Name string
	Type cty.Type
}

// NewPortDefinition creates a definition with a freshly generated id.
func NewPortDefinition(name string, typ cty.Type) PortDefinition {
	return PortDefinition{ID: uuid.NewString(), Name: name, Type: typ}
}

// Function is a graph with a user-editable signature. Its entry node exposes
// the inputs, its exit node collects the outputs.
type Function struct {
	name  string
	graph *Graph
	entry *entryNode
	exit  *exitNode

	inputs     []PortDefinition
	outputs    []PortDefinition
	returnType cty.Type
	version    uint64

	subscribers []subscriber
	nextSub     int
}

type subscriber struct {
	id int
	fn func()
}

// NewFunction creates a function with an empty signature. The entry and exit
// nodes exist from construction on.
func NewFunction(name string) *Function {
	f := &Function{name: name, returnType: cty.NilType}
	f.graph = New(name)
	f.graph.owner = f
	f.entry = &entryNode{Base: NewBase(EntryNodeID, EntryNodeType), fn: f}
	f.exit = &exitNode{Base: NewBase(ExitNodeID, ExitNodeType), fn: f}
	f.mustAdd(f.entry)
	f.mustAdd(f.exit)
	return f
}

func (f *Function) mustAdd(n Node) {
	if err := f.graph.AddNode(n); err != nil {
		panic(err)
	}
}

func (f *Function) Name() string { return f.name }

// Graph returns the function's body graph.
func (f *Function) Graph() *Graph { return f.graph }

// Entry returns the entry node.
func (f *Function) Entry() Node { return f.entry }

// Exit returns the exit node.
func (f *Function) Exit() Node { return f.exit }

// Inputs returns a copy of the input signature.
func (f *Function) Inputs() []PortDefinition { return slices.Clone(f.inputs) }

// Outputs returns a copy of the output signature.
func (f *Function) Outputs() []PortDefinition { return slices.Clone(f.outputs) }

// Input looks up an input definition by id.
func (f *Function) Input(id string) (PortDefinition, bool) {
	return findDefinition(f.inputs, id)
}

// Output looks up an output definition by id.
func (f *Function) Output(id string) (PortDefinition, bool) {
	return findDefinition(f.outputs, id)
}

// ReturnType is the declared return type, or cty.NilType when the function
// returns nothing.
func (f *Function) ReturnType() cty.Type { return f.returnType }

// SetReturnType changes the declared return type.
func (f *Function) SetReturnType(t cty.Type) {
	f.returnType = t
	f.PortChange()
}

// Version increases on every signature change.
func (f *Function) Version() uint64 { return f.version }

// AddNode adds a body node.
func (f *Function) AddNode(n Node) error { return f.graph.AddNode(n) }

// Connect adds a body connection.
func (f *Function) Connect(c Connection) { f.graph.Connect(c) }

// AddInputDefinition appends an input slot. It returns false, leaving the
// signature untouched, when the id is already used or reserved.
func (f *Function) AddInputDefinition(def PortDefinition) bool {
	if def.ID == "" || def.ID == EntryFlowPort {
		return false
	}
	if _, exists := f.Input(def.ID); exists {
		return false
	}
	f.inputs = append(f.inputs, def)
	f.PortChange()
	return true
}

// AddOutputDefinition appends an output slot. It returns false, leaving the
// signature untouched, when the id is already used or reserved.
func (f *Function) AddOutputDefinition(def PortDefinition) bool {
	if def.ID == "" || def.ID == ExitFlowPort || def.ID == ExitResultPort {
		return false
	}
	if _, exists := f.Output(def.ID); exists {
		return false
	}
	f.outputs = append(f.outputs, def)
	f.PortChange()
	return true
}

// RemoveInputDefinition drops an input slot by id.
func (f *Function) RemoveInputDefinition(id string) bool {
	i := slices.IndexFunc(f.inputs, func(d PortDefinition) bool { return d.ID == id })
	if i < 0 {
		return false
	}
	f.inputs = slices.Delete(f.inputs, i, i+1)
	f.PortChange()
	return true
}

// RemoveOutputDefinition drops an output slot by id.
func (f *Function) RemoveOutputDefinition(id string) bool {
	i := slices.IndexFunc(f.outputs, func(d PortDefinition) bool { return d.ID == id })
	if i < 0 {
		return false
	}
	f.outputs = slices.Delete(f.outputs, i, i+1)
	f.PortChange()
	return true
}

// PortChange broadcasts a signature change: signature-dependent nodes of the
// body are notified, a running body rebinds, and subscribers (call sites in
// other graphs) are told to refresh.
func (f *Function) PortChange() {
	for _, n := range f.graph.nodes {
		if sd, ok := n.(SignatureDependent); ok {
			sd.OnSignatureChanged()
		}
	}
	f.version++
	f.graph.Rebind()
	for _, s := range slices.Clone(f.subscribers) {
		s.fn()
	}
}

// Subscribe registers fn to run after every signature change. The returned
// function cancels the subscription.
func (f *Function) Subscribe(fn func()) (cancel func()) {
	id := f.nextSub
	f.nextSub++
	f.subscribers = append(f.subscribers, subscriber{id: id, fn: fn})
	return func() {
		f.subscribers = slices.DeleteFunc(f.subscribers, func(s subscriber) bool { return s.id == id })
	}
}

// Argument reads the current value of an input slot as seen by the entry
// node. Outside of a call it is a null of the slot type.
func (f *Function) Argument(id string) cty.Value {
	def, ok := f.Input(id)
	if !ok {
		return cty.NilVal
	}
	return f.entry.arg(def)
}

// Clone deep-copies the body. The clone has its own entry and exit nodes,
// a copy of the signature, and no subscribers.
func (f *Function) Clone() *Function {
	c := &Function{
		name:       f.name,
		inputs:     slices.Clone(f.inputs),
		outputs:    slices.Clone(f.outputs),
		returnType: f.returnType,
		version:    f.version,
	}
	c.graph = New(f.graph.name)
	c.graph.opts = f.graph.opts
	c.graph.owner = c
	for _, n := range f.graph.nodes {
		switch n.ID() {
		case EntryNodeID:
			c.entry = &entryNode{Base: f.entry.CloneBase(), fn: c}
			c.mustAdd(c.entry)
		case ExitNodeID:
			c.exit = &exitNode{Base: f.exit.CloneBase(), fn: c}
			c.mustAdd(c.exit)
		default:
			c.mustAdd(n.Clone())
		}
	}
	c.graph.connections = slices.Clone(f.graph.connections)
	return c
}

func findDefinition(defs []PortDefinition, id string) (PortDefinition, bool) {
	for _, d := range defs {
		if d.ID == id {
			return d, true
		}
	}
	return PortDefinition{}, false
}

// entryNode materializes the input signature as value outputs plus one flow
// output that starts the body.
type entryNode struct {
	Base
	fn   *Function
	out  *port.FlowOutput
	args func(id string) cty.Value
}

func (n *entryNode) RegisterPorts() {
	n.out = n.AddFlowOutput(EntryFlowPort)
	for _, def := range n.fn.inputs {
		n.AddPort(port.NewValueOutput(def.ID, def.Name, def.Type, func() cty.Value {
			return n.arg(def)
		}))
	}
}

func (n *entryNode) Clone() Node {
	return &entryNode{Base: n.CloneBase(), fn: n.fn}
}

func (n *entryNode) OnSignatureChanged() {}

func (n *entryNode) arg(def PortDefinition) cty.Value {
	if n.args == nil {
		return cty.NullVal(def.Type)
	}
	v := n.args(def.ID)
	if v.Type() == cty.NilType {
		return cty.NullVal(def.Type)
	}
	conv, err := convert.Convert(v, def.Type)
	if err != nil {
		n.Fail(fmt.Errorf("argument %q: %w", def.Name, err))
		return cty.NullVal(def.Type)
	}
	return conv
}

func (n *entryNode) fire(f *flow.Flow) {
	if n.out != nil {
		n.out.Call(f)
	}
}

// exitNode materializes the output signature as value inputs, plus the flow
// input that completes a call and a boolean result flag.
type exitNode struct {
	Base
	fn      *Function
	result  *port.ValueInput
	outputs []*port.ValueInput
	sink    func(results map[string]cty.Value, ok bool)
}

func (n *exitNode) RegisterPorts() {
	n.AddFlowInput(ExitFlowPort, n.complete)
	n.result = n.AddValueInput(ExitResultPort, cty.Bool)
	if _, custom := n.defaults[ExitResultPort]; !custom {
		_ = n.result.SetDefault(cty.True)
	}
	n.outputs = nil
	for _, def := range n.fn.outputs {
		in := port.NewValueInput(def.ID, def.Name, def.Type)
		n.AddPort(in)
		n.outputs = append(n.outputs, in)
	}
}

func (n *exitNode) Clone() Node {
	return &exitNode{Base: n.CloneBase(), fn: n.fn}
}

func (n *exitNode) OnSignatureChanged() {}

func (n *exitNode) complete(*flow.Flow) {
	results := make(map[string]cty.Value, len(n.outputs))
	for _, in := range n.outputs {
		results[in.ID()] = in.Value()
	}
	flag := n.result.Value()
	ok := !flag.IsNull() && flag.True()
	if n.sink != nil {
		n.sink(results, ok)
	}
}
