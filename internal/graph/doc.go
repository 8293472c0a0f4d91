// Package graph is the execution engine: nodes, connections, the two-phase
// initialization protocol, the per-tick update loop, and callable functions.
//
// # Two Channels Over One Node Set
//
// Nodes own typed ports (see package port). Value connections form a
// pull-based data channel: reading an input evaluates the connected output on
// the spot, every time. Flow connections form a push-based control channel:
// calling an output synchronously runs the connected input's callback. The two
// channels are independent graphs over the same nodes.
//
//	┌──────────┐  flow   ┌──────────┐  flow   ┌──────────┐
//	│  start   │ ──────▶ │  branch  │ ──────▶ │  print   │
//	└──────────┘         └────▲─────┘         └────▲─────┘
//	                          │ value              │ value
//	                     ┌────┴─────┐         ┌────┴─────┐
//	                     │ compare  │         │   add    │
//	                     └──────────┘         └──────────┘
//
// # Lifecycle
//
// Start runs two phases.
//
//  1. Structural pass. Nested function instances are created and started
//     first, because the ports of their wrapper nodes depend on the nested
//     signature. On the very first start only, the updatable table and the
//     name-to-callable table are populated.
//  2. Binding pass. Every node is attached to the graph, declares its ports
//     through RegisterPorts, and the connection list is resolved against the
//     declared ports.
//
// Stop notifies listeners and stops nested instances. A restart repeats
// phase 2 but never rebuilds the phase-1 tables.
//
// # Capabilities
//
// A node opts into engine behavior by implementing small interfaces:
// Updatable, CallableByName, SignatureDependent, Nested, StartListener, and
// StopListener. The graph queries them; it never type-tests concrete nodes.
//
// # Functions
//
// A Function is a graph with mandatory entry and exit nodes and an editable
// signature. A CallSite clones a Function into an independent live instance,
// feeds it arguments lazily, and collects results when the exit node fires or
// a return node hands back a value.
//
// # Thread-Safety
//
// None. A graph and everything cloned from it must be driven from a single
// goroutine.
package graph
