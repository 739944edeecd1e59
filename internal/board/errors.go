package board

import "errors"

var (
	ErrColumnNotFound  = errors.New("column not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrEmptyTitle      = errors.New("title must not be empty")

	// errNoop aborts an operation that would not change anything.
	errNoop = errors.New("no-op")
)

// ActionError is returned when a mutation was rolled back because its store
// call failed.
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return "failed to " + e.Action + ": " + e.Err.Error()
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
