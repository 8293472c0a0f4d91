package graph

import (
	"reflect"

	"github.com/specialistvlad/flowgridgo/internal/blackboard"
)

// ExecContext is the external state a graph instance is bound to: the host
// object ("agent") and its parameter store. It is shared by every node of the
// graph and by the function instances cloned for it.
type ExecContext struct {
	Agent      any
	Blackboard blackboard.Store
}

// ComponentProvider is implemented by agents that expose components other
// than themselves.
type ComponentProvider interface {
	Component(t reflect.Type) (any, bool)
}

// AgentComponent returns the component of type t exposed by the bound agent,
// or nil. Results, misses included, are cached for as long as the graph stays
// bound to the same execution context.
func (g *Graph) AgentComponent(t reflect.Type) any {
	if c, ok := g.components[t]; ok {
		return c
	}

	var c any
	if g.ec != nil && g.ec.Agent != nil {
		if p, ok := g.ec.Agent.(ComponentProvider); ok {
			if v, found := p.Component(t); found {
				c = v
			}
		}
		if c == nil && reflect.TypeOf(g.ec.Agent).AssignableTo(t) {
			c = g.ec.Agent
		}
	}

	if g.components == nil {
		g.components = make(map[reflect.Type]any)
	}
	g.components[t] = c
	return c
}

// ComponentOf is the typed form of AgentComponent.
func ComponentOf[T any](g *Graph) (T, bool) {
	var zero T
	c := g.AgentComponent(reflect.TypeFor[T]())
	if c == nil {
		return zero, false
	}
	v, ok := c.(T)
	return v, ok
}

// bindContext switches the graph to ec, dropping the component cache when the
// context actually changes.
func (g *Graph) bindContext(ec *ExecContext) {
	if g.ec != ec {
		g.components = nil
	}
	g.ec = ec
}
