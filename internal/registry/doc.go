// Package registry provides the central "glue" for the node module system.
//
// The Registry maps the node type names used in documents (e.g. "math.add")
// to the compiled Go factories that build the nodes. Modules populate it at
// startup; the builder then consults it for every node declaration.
//
// Before anything is built, a loaded document is validated against the
// registry so that every node type it references is known, preventing a wide
// class of late failures.
package registry
