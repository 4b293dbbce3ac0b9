// Package extapp runs external command-line tools as managed jobs.
// An App owns exactly one child process and moves through an explicit
// lifecycle: the caller starts it, polls or joins it, and reads typed
// results only after the join has evaluated the captured output.
package extapp

// State represents the current lifecycle state of an App.
type State string

const (
	// StateCreated indicates the App is constructed but not started.
	StateCreated State = "CREATED"
	// StateRunning indicates the child process is executing.
	StateRunning State = "RUNNING"
	// StateFinished indicates the process exited but results are not evaluated yet.
	StateFinished State = "FINISHED"
	// StateJoined indicates results were evaluated and accessors are valid.
	StateJoined State = "JOINED"
	// StateFailed indicates a nonzero exit or an output that could not be parsed.
	StateFailed State = "FAILED"
	// StateCancelled indicates the process was killed on request.
	StateCancelled State = "CANCELLED"
)

// validTransitions defines which lifecycle transitions are allowed.
var validTransitions = map[State][]State{
	StateCreated:   {StateRunning, StateFailed},
	StateRunning:   {StateFinished, StateFailed, StateCancelled},
	StateFinished:  {StateJoined, StateFailed},
	StateJoined:    {},
	StateFailed:    {},
	StateCancelled: {},
}

// canTransition checks if a transition from one state to another is valid.
func canTransition(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the state permits no further transitions.
func (s State) IsTerminal() bool {
	return s == StateJoined || s == StateFailed || s == StateCancelled
}
