// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the format-agnostic Go representation of flowgrid
// definition documents. Documents are written in HCL or JSON. Both forms are
// parsed into the same structures, so later stages never look at the source
// syntax.
//
// # Core Concepts
//
//   - Document: The root container. It aggregates every graph, function and
//     task found in one or more files.
//
//   - GraphSpec: A top-level graph that the host starts and ticks. It holds a
//     Body of nodes, connections and input defaults.
//
//   - FunctionSpec: A callable subgraph. It adds an ordered signature (input
//     and output port definitions, an optional return type) to a Body. Every
//     function body implicitly contains the reserved `entry` and `exit` nodes.
//
//   - TaskSpec: A condition or action that binds a function to blackboard
//     keys and runs on every tick.
//
//   - FSInfo: Metadata linking every spec back to its source file, used in
//     error messages.
//
// Why evaluate attributes here?
//
// Node attributes are literal configuration (a constant's value, the operator
// of a comparison, the name of a called function). Nothing in a document can
// reference runtime values, so attributes are evaluated once at load time into
// cty values. The registry later decodes them into each node's Go struct.
// Expressions that must run at runtime are carried as strings and compiled by
// the nodes that own them.
package model
