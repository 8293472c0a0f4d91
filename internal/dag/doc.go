// Package dag is a small directed graph of string ids used to order
// definitions that reference each other. The builder adds one vertex per
// function and one edge per function-call reference, rejects cycles, and
// builds functions in topological order so every callee exists before its
// callers.
package dag
