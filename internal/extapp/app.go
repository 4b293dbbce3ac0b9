package extapp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Evaluator parses the captured stdout of a finished process into
// tool-specific results. It runs exactly once, during the join that
// observes a successful exit. A returned error (typically a
// *FormatError) moves the App to FAILED.
type Evaluator func(stdout string) error

// App manages the lifecycle of a single external process invocation.
// It is single-use: one App maps to exactly one child process, and a
// terminal App cannot be restarted. An App is not safe for concurrent
// use from multiple goroutines without external synchronization.
type App struct {
	mu sync.Mutex

	binPath  string
	args     []string
	dir      string
	stdin    []byte
	evaluate Evaluator
	logger   *slog.Logger

	state     State
	cmd       *exec.Cmd
	stdout    bytes.Buffer
	stderr    bytes.Buffer
	done      chan struct{}
	waitErr   error
	tempFiles []string
}

// Option configures an App.
type Option func(*App)

// WithArgs sets the command-line arguments.
func WithArgs(args ...string) Option {
	return func(a *App) {
		a.args = args
	}
}

// WithDir sets the working directory for the process.
func WithDir(dir string) Option {
	return func(a *App) {
		a.dir = dir
	}
}

// WithStdin sets the payload piped to the process standard input.
func WithStdin(data []byte) Option {
	return func(a *App) {
		a.stdin = data
	}
}

// WithEvaluator sets the result-parsing hook invoked on join.
func WithEvaluator(eval Evaluator) Option {
	return func(a *App) {
		a.evaluate = eval
	}
}

// WithLogger sets the logger used for cleanup diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// New creates an App for the given binary in CREATED state.
func New(binPath string, opts ...Option) *App {
	a := &App{
		binPath: binPath,
		state:   StateCreated,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State returns the current lifecycle state.
func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// RequireState returns a StateError unless the App is in one of the
// given states. Result accessors of specializations use it as a guard.
func (a *App) RequireState(op string, states ...State) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range states {
		if a.state == s {
			return nil
		}
	}
	return &StateError{Op: op, Current: a.state}
}

// RegisterTempFile records a temporary file owned by this App. All
// registered files are removed when the App reaches a terminal state.
func (a *App) RegisterTempFile(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tempFiles = append(a.tempFiles, path)
}

// Start spawns the external process. It does not block; the process
// runs concurrently with the caller. Start is only valid in CREATED
// state and fails with a StateError otherwise, double starts included.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateCreated {
		return &StateError{Op: "start", Current: a.state}
	}

	cmd := exec.CommandContext(ctx, a.binPath, a.args...)
	cmd.Dir = a.dir
	cmd.Stdout = &a.stdout
	cmd.Stderr = &a.stderr
	if a.stdin != nil {
		cmd.Stdin = bytes.NewReader(a.stdin)
	}

	if err := cmd.Start(); err != nil {
		a.state = StateFailed
		a.cleanupLocked()
		return fmt.Errorf("start %s: %w", a.binPath, err)
	}

	a.cmd = cmd
	a.state = StateRunning
	a.done = make(chan struct{})

	go func() {
		a.waitErr = cmd.Wait()
		close(a.done)
	}()

	return nil
}

// IsRunning reports whether the process is still executing, without
// blocking. Observing an exit moves the App to FINISHED; results stay
// unavailable until Join evaluates them.
func (a *App) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateRunning {
		return false
	}
	select {
	case <-a.done:
		a.transitionLocked(StateFinished)
		return false
	default:
		return true
	}
}

// Join blocks until the process exits or the timeout elapses. On
// timeout it returns a TimeoutError and leaves the process running, so
// the caller may retry or Kill. Once the process has exited, Join
// checks the exit status, runs the evaluator exactly once, and moves
// the App to JOINED (or FAILED, returning a ProcessError or the
// evaluator's error). Joining an already JOINED App is a no-op.
func (a *App) Join(timeout time.Duration) error {
	a.mu.Lock()
	switch a.state {
	case StateJoined:
		a.mu.Unlock()
		return nil
	case StateRunning, StateFinished:
		// proceed
	default:
		defer a.mu.Unlock()
		return &StateError{Op: "join", Current: a.state}
	}
	done := a.done
	a.mu.Unlock()

	select {
	case <-done:
	case <-time.After(timeout):
		// The process may have exited in the meantime; prefer the
		// result over a spurious timeout.
		select {
		case <-done:
		default:
			return &TimeoutError{Timeout: timeout}
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.evaluateLocked()
}

// Kill sends a termination signal to the child process and moves the
// App to CANCELLED. No results are parseable afterwards. If the
// process already exited, Kill loses the race: the App moves to
// FINISHED instead and the caller may still Join.
func (a *App) Kill() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateRunning {
		return &StateError{Op: "kill", Current: a.state}
	}
	if err := a.cmd.Process.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			a.transitionLocked(StateFinished)
			return nil
		}
		return fmt.Errorf("kill %s: %w", a.binPath, err)
	}
	a.transitionLocked(StateCancelled)
	return nil
}

// Stdout returns the captured standard output. It is valid once the
// process has exited.
func (a *App) Stdout() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateCreated || a.state == StateRunning {
		return "", &StateError{Op: "stdout", Current: a.state}
	}
	return a.stdout.String(), nil
}

// Stderr returns the captured standard error. It is valid once the
// process has exited.
func (a *App) Stderr() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateCreated || a.state == StateRunning {
		return "", &StateError{Op: "stderr", Current: a.state}
	}
	return a.stderr.String(), nil
}

// evaluateLocked collects the exit status and runs the evaluator.
// Called with the mutex held, after the wait goroutine has finished.
func (a *App) evaluateLocked() error {
	if a.state == StateRunning {
		a.state = StateFinished
	}
	if a.state != StateFinished {
		return &StateError{Op: "evaluate", Current: a.state}
	}

	if a.waitErr != nil {
		a.transitionLocked(StateFailed)
		var exitErr *exec.ExitError
		if errors.As(a.waitErr, &exitErr) {
			return &ProcessError{
				Bin:      a.binPath,
				ExitCode: exitErr.ExitCode(),
				Stderr:   a.stderr.String(),
			}
		}
		return fmt.Errorf("wait %s: %w", a.binPath, a.waitErr)
	}

	if a.evaluate != nil {
		if err := a.evaluate(a.stdout.String()); err != nil {
			a.transitionLocked(StateFailed)
			return err
		}
	}

	a.transitionLocked(StateJoined)
	return nil
}

// transitionLocked applies a state change and releases owned temp
// files once a terminal state is reached. Called with the mutex held.
func (a *App) transitionLocked(to State) {
	if !canTransition(a.state, to) {
		return
	}
	a.state = to
	if to.IsTerminal() {
		a.cleanupLocked()
	}
}

// cleanupLocked removes all registered temp files. Removal failures
// are logged, not returned; cleanup runs on every exit path.
func (a *App) cleanupLocked() {
	for _, path := range a.tempFiles {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			a.logger.Warn("failed to remove temp file",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}
	a.tempFiles = nil
}
