package graph_test

import (
	"context"

	"github.com/specialistvlad/flowgridgo/internal/flow"
	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/port"
	"github.com/zclconf/go-cty/cty"
)

// counterNode returns an increasing number on every pull.
type counterNode struct {
	graph.Base
	n int64
}

func newCounter(id string) *counterNode {
	return &counterNode{Base: graph.NewBase(id, "test.counter")}
}

func (c *counterNode) RegisterPorts() {
	c.AddValueOutput("count", cty.Number, func() cty.Value {
		c.n++
		return cty.NumberIntVal(c.n)
	})
}

func (c *counterNode) Clone() graph.Node { return newCounter(c.ID()) }

// triggerNode is a flow source fired by the test.
type triggerNode struct {
	graph.Base
	out *port.FlowOutput
}

func newTrigger(id string) *triggerNode {
	return &triggerNode{Base: graph.NewBase(id, "test.trigger")}
}

func (n *triggerNode) RegisterPorts() { n.out = n.AddFlowOutput("out") }
func (n *triggerNode) Clone() graph.Node { return newTrigger(n.ID()) }
func (n *triggerNode) Fire() { n.out.Call(flow.New()) }

// sinkNode pulls its value input every time control reaches it.
type sinkNode struct {
	graph.Base
	pulls int
	seen  []cty.Value
	value *port.ValueInput
	out   *port.FlowOutput
}

func newSink(id string, pulls int) *sinkNode {
	return &sinkNode{Base: graph.NewBase(id, "test.sink"), pulls: pulls}
}

func (n *sinkNode) RegisterPorts() {
	n.AddFlowInput("in", func(f *flow.Flow) {
		for i := 0; i < n.pulls; i++ {
			n.seen = append(n.seen, n.value.Value())
		}
		n.out.Call(f)
	})
	n.value = n.AddValueInput("value", cty.DynamicPseudoType)
	n.out = n.AddFlowOutput("out")
}

func (n *sinkNode) Clone() graph.Node { return newSink(n.ID(), n.pulls) }

// addNode sums two numbers.
type addNode struct {
	graph.Base
}

func newAdd(id string) *addNode {
	return &addNode{Base: graph.NewBase(id, "test.add")}
}

func (n *addNode) RegisterPorts() {
	a := n.AddValueInput("a", cty.Number)
	b := n.AddValueInput("b", cty.Number)
	n.AddValueOutput("sum", cty.Number, func() cty.Value {
		av, bv := a.Value(), b.Value()
		if av.IsNull() || bv.IsNull() {
			return cty.NullVal(cty.Number)
		}
		return av.Add(bv)
	})
}

func (n *addNode) Clone() graph.Node {
	return &addNode{Base: n.CloneBase()}
}

// recorderNode appends its id to a shared log on every update.
type recorderNode struct {
	graph.Base
	log *[]string
}

func newRecorder(id string, log *[]string) *recorderNode {
	return &recorderNode{Base: graph.NewBase(id, "test.recorder"), log: log}
}

func (n *recorderNode) RegisterPorts() {}
func (n *recorderNode) Clone() graph.Node { return newRecorder(n.ID(), n.log) }
func (n *recorderNode) Update() { *n.log = append(*n.log, n.ID()) }

// namedNode is callable by name and doubles its first argument.
type namedNode struct {
	graph.Base
	name  string
	calls int
}

func newNamed(id, name string) *namedNode {
	return &namedNode{Base: graph.NewBase(id, "test.named"), name: name}
}

func (n *namedNode) RegisterPorts() {}
func (n *namedNode) Clone() graph.Node { return newNamed(n.ID(), n.name) }
func (n *namedNode) FunctionName() string { return n.name }

func (n *namedNode) Invoke(args []cty.Value) cty.Value {
	n.calls++
	if len(args) == 0 {
		return cty.NullVal(cty.Number)
	}
	return args[0].Multiply(cty.NumberIntVal(2))
}

// panicNode panics whenever control reaches it.
type panicNode struct {
	graph.Base
}

func newPanic(id string) *panicNode {
	return &panicNode{Base: graph.NewBase(id, "test.panic")}
}

func (n *panicNode) RegisterPorts() {
	n.AddFlowInput("in", func(*flow.Flow) { panic("kaboom") })
}

func (n *panicNode) Clone() graph.Node { return newPanic(n.ID()) }

// lifecycleNode records the order of engine callbacks.
type lifecycleNode struct {
	graph.Base
	events *[]string
}

func newLifecycle(id string, events *[]string) *lifecycleNode {
	return &lifecycleNode{Base: graph.NewBase(id, "test.lifecycle"), events: events}
}

func (n *lifecycleNode) RegisterPorts() { *n.events = append(*n.events, n.ID()+":register") }
func (n *lifecycleNode) Clone() graph.Node { return newLifecycle(n.ID(), n.events) }
func (n *lifecycleNode) OnGraphStarted(*graph.Graph) {
	*n.events = append(*n.events, n.ID()+":started")
}
func (n *lifecycleNode) OnGraphStopped(*graph.Graph) {
	*n.events = append(*n.events, n.ID()+":stopped")
}

// nestedNode stands in for a function wrapper.
type nestedNode struct {
	lifecycleNode
}

func newNested(id string, events *[]string) *nestedNode {
	return &nestedNode{lifecycleNode{Base: graph.NewBase(id, "test.nested"), events: events}}
}

func (n *nestedNode) Clone() graph.Node { return newNested(n.ID(), n.events) }

func (n *nestedNode) StartNested(ctx context.Context, ec *graph.ExecContext) error {
	*n.events = append(*n.events, n.ID()+":nested-start")
	return nil
}

func (n *nestedNode) UpdateNested() {
	*n.events = append(*n.events, n.ID()+":nested-update")
}

func (n *nestedNode) StopNested() {
	*n.events = append(*n.events, n.ID()+":nested-stop")
}
