/*
Package builder turns a loaded *model.Document into a runnable *Program.

Construction runs in phases:

 1. Node types: every node declaration is checked against the registry, so
    a typo in one graph is reported together with all the others.

 2. Function order: a node carrying a string `function` attribute depends on
    the named function. These references form a dependency graph (delegated
    to the `dag` package) that must be acyclic; functions are then built in
    topological order, so a function.call node always finds a finished
    callee. Recursion goes through function.custom and function.invoke,
    which resolve names at run time and are not part of this graph.

 3. Bodies: functions and graphs are populated from their specs through the
    registry's factories, defaults are applied, and every connection is
    validated against the declared ports. All problems are joined.

 4. Tasks: each task is bound to its function.

The returned Program holds stopped graphs; hosts start them with an
execution context of their own.
*/
package builder
