// Package env_vars provides env.var, which reads the process environment.
package env_vars

import (
	"os"
	"strings"

	"github.com/specialistvlad/flowgridgo/internal/graph"
	"github.com/specialistvlad/flowgridgo/internal/model"
	"github.com/specialistvlad/flowgridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node type with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNode("env.var", func(spec *model.NodeSpec, _ registry.Env) (graph.Node, error) {
		var cfg struct {
			Name    string  `cty:"name"`
			Default *string `cty:"default"`
		}
		if err := registry.Decode(spec.Attrs, &cfg); err != nil {
			return nil, err
		}
		return New(spec.ID, cfg.Name, cfg.Default), nil
	})
}

// Var reads the environment on every pull. `value` is the named variable,
// falling back to the default and then to null; `all` is the whole
// environment.
type Var struct {
	graph.Base
	name string
	def  *string
}

func New(id, name string, def *string) *Var {
	return &Var{Base: graph.NewBase(id, "env.var"), name: name, def: def}
}

func (n *Var) RegisterPorts() {
	n.AddValueOutput("value", cty.String, func() cty.Value {
		if n.name != "" {
			if v, ok := os.LookupEnv(n.name); ok {
				return cty.StringVal(v)
			}
		}
		if n.def != nil {
			return cty.StringVal(*n.def)
		}
		return cty.NullVal(cty.String)
	})
	n.AddValueOutput("all", cty.Map(cty.String), func() cty.Value {
		env := make(map[string]cty.Value)
		for _, e := range os.Environ() {
			if k, v, ok := strings.Cut(e, "="); ok && k != "" {
				env[k] = cty.StringVal(v)
			}
		}
		if len(env) == 0 {
			return cty.MapValEmpty(cty.String)
		}
		return cty.MapVal(env)
	})
}

func (n *Var) Clone() graph.Node {
	return &Var{Base: n.CloneBase(), name: n.name, def: n.def}
}
