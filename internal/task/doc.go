// Package task runs callable functions as blackboard-bound conditions and
// actions.
//
// A Task owns one CallSite for its function and one Parameter per signature
// slot. Input parameters are read from the blackboard lazily, when the
// function body pulls them; output parameters are written back to the
// blackboard when the function's exit node fires. Conditions report the
// function's result flag; actions report whether the call succeeded.
package task
