// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the TaskSpec, a condition or action bound to the
// blackboard.
//
// Why tasks?
//
// Hosts that evaluate behaviour every tick (a decision tree, a state
// machine) need to run a function without wiring it into a graph. A task
// names the function, says whether its result is a check or an effect, and
// maps each signature slot to a blackboard key. Inputs are read from those
// keys and outputs are written back to them.
package model

import "fmt"

// TaskKind selects how the host interprets a task's result.
type TaskKind string

const (
	// TaskCondition runs the function and reports its result flag.
	TaskCondition TaskKind = "condition"
	// TaskAction runs the function for its effects and reports success.
	TaskAction TaskKind = "action"
)

// ParseTaskKind validates a kind name.
func ParseTaskKind(s string) (TaskKind, error) {
	switch k := TaskKind(s); k {
	case TaskCondition, TaskAction:
		return k, nil
	default:
		return "", fmt.Errorf("unknown task kind %q, expected %q or %q", s, TaskCondition, TaskAction)
	}
}

// TaskSpec is the format-agnostic representation of a `task` block.
type TaskSpec struct {
	Name          string
	FSInformation *FSInfo

	Kind     TaskKind
	Function string
	// Params maps signature slot names to blackboard keys. Slots without an
	// entry use their own name as the key.
	Params map[string]string
	// Every runs the task on every n-th tick. Values below 1 mean every tick.
	Every int
}
