package engine

import "context"

// Void is the result type of commands that only have side effects.
type Void = struct{}

// Command is a single-use operation against engine state, executed within one unit of work.
// Execute must be called at most once per instance.
type Command[R any] interface {
	CommandType() string
	Execute(ctx context.Context, commandContext CommandContext) (R, error)
}

// ReadOnlyCommand is implemented by commands that never mutate state.
// The dispatcher runs them with eventual consistency.
type ReadOnlyCommand interface {
	ReadOnly() bool
}

// CommandState is a state of the command execution state machine.
type CommandState int

const (
	StateCreated CommandState = iota
	StateValidating
	StateResolving
	StateEffecting
	StateEventDispatch
	StateCompleted
	StateFailed
)

// String provides a string representation of CommandState for logging and debugging.
func (s CommandState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateValidating:
		return "validating"
	case StateResolving:
		return "resolving"
	case StateEffecting:
		return "effecting"
	case StateEventDispatch:
		return "event_dispatch"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is possible.
func (s CommandState) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Lifecycle tracks Created → Validating → Resolving → Effecting → (EventDispatch) → Completed,
// with Failed reachable from every non-terminal state on the first error.
// Commands embed it; the zero value is in StateCreated.
type Lifecycle struct {
	state CommandState
	err   error
}

// Begin moves a fresh command into Validating.
// It returns ErrCommandAlreadyExecuted if the command left StateCreated before.
func (l *Lifecycle) Begin() error {
	if l.state != StateCreated {
		return ErrCommandAlreadyExecuted
	}

	l.state = StateValidating

	return nil
}

// Advance moves forward to next. Transitions out of a terminal state or backwards are ignored.
func (l *Lifecycle) Advance(next CommandState) {
	if l.state.IsTerminal() || next <= l.state || next == StateFailed {
		return
	}

	l.state = next
}

// Fail moves into StateFailed and returns err unchanged, so it can be used in return statements.
func (l *Lifecycle) Fail(err error) error {
	if !l.state.IsTerminal() {
		l.state = StateFailed
		l.err = err
	}

	return err
}

// Complete moves into StateCompleted.
func (l *Lifecycle) Complete() {
	l.Advance(StateCompleted)
}

// State returns the current state.
func (l *Lifecycle) State() CommandState {
	return l.state
}

// Err returns the error that failed the command, if any.
func (l *Lifecycle) Err() error {
	return l.err
}
