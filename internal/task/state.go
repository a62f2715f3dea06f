// Package task tracks what the assistant believes it is doing across turns:
// sitting idle, sizing up a request, working through a task, or continuing
// on its own without new user input.
package task

import "fmt"

// State is the per-conversation task state.
type State int

const (
	// Idle means no active task and nothing pending from the user.
	Idle State = iota
	// Analyze means the assistant is evaluating whether the latest user
	// request is a multi-step task.
	Analyze
	// InTask means the assistant is executing a recognized task.
	InTask
	// AutoContinue authorizes the orchestrator to request another model
	// turn immediately, without waiting for user input.
	AutoContinue
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Analyze:
		return "analyze"
	case InTask:
		return "in_task"
	case AutoContinue:
		return "auto_continue"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Continues reports whether the orchestrator should request another model
// turn without waiting for the user.
func (s State) Continues() bool {
	return s == InTask || s == AutoContinue
}

// Signals are the observable facts of one completed turn. The transition
// function consumes nothing else.
type Signals struct {
	// PendingInput is set when unconsumed user input exists.
	PendingInput bool
	// Content is set when the turn finished with plain assistant text.
	Content bool
	// ToolCalls is set when the turn requested one or more tool calls.
	ToolCalls bool
	// TaskStarted is set when the task-start tool was among the calls.
	TaskStarted bool
	// TaskCompleted is set when the task-finish tool was among the calls.
	TaskCompleted bool
	// Mechanical is set when every tool result this turn was a plain
	// acknowledgement needing no user judgment (a file written, a value
	// remembered).
	Mechanical bool
}

// Next computes the state after a turn. It is a pure function: same inputs,
// same output, no side effects. An unknown state is a bug in the caller and
// fails loudly rather than degrading to a default.
func Next(current State, sig Signals) (State, error) {
	switch current {
	case Idle:
		if sig.PendingInput {
			return Analyze, nil
		}
		return Idle, nil

	case Analyze:
		if sig.ToolCalls || sig.TaskStarted {
			return InTask, nil
		}
		return Idle, nil

	case InTask, AutoContinue:
		// AutoContinue re-enters through the same evaluation as InTask.
		if sig.PendingInput {
			// New user input while a task is open, such as resuming after
			// the auto-continue cap yielded, re-enters through Analyze so
			// the next turn's tool calls keep the task running.
			return Analyze, nil
		}
		if sig.TaskCompleted {
			return Idle, nil
		}
		if sig.ToolCalls {
			if sig.Mechanical {
				return AutoContinue, nil
			}
			return InTask, nil
		}
		// Finishing content with no further calls ends the task.
		return Idle, nil

	default:
		return current, fmt.Errorf("task: no transition from %s", current)
	}
}
