package extapp

import (
	"fmt"
	"strings"
	"time"
)

// StateError is returned when an operation is invoked in a lifecycle
// state that forbids it, e.g. reading results before a join or calling
// Start twice.
type StateError struct {
	// Op is the operation that was attempted.
	Op string
	// Current is the state the App was in.
	Current State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("extapp: %s not allowed in state %s", e.Op, e.Current)
}

// TimeoutError is returned when a Join exceeded its deadline. The
// process is left running; the caller may retry the join or kill it.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("extapp: join timed out after %s", e.Timeout)
}

// ProcessError is returned when the external tool exited with a nonzero
// status. The diagnostic is built from the captured stderr.
type ProcessError struct {
	// Bin is the command that was executed.
	Bin string
	// ExitCode is the process exit status.
	ExitCode int
	// Stderr is the captured standard error text.
	Stderr string
}

func (e *ProcessError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = "no stderr output"
	}
	return fmt.Sprintf("extapp: %s exited with status %d: %s", e.Bin, e.ExitCode, msg)
}

// FormatError is returned when captured output did not match the
// expected textual contract of the tool.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "extapp: " + e.Reason
}

// Formatf builds a FormatError from a format string.
func Formatf(format string, args ...any) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}
