package dispatch

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// Raised (as a panic value) when an inert task is invoked or moved. A
	// task is inert once it has been moved from or invoked.
	ErrInertTask = errors.New("This task is inert: it was moved from or already invoked")

	// Raised (as a panic value) when the state given to Bind does not fit
	// in TaskCapacity bytes.
	ErrCapacityExceeded = errors.New("The captured state exceeds the task capacity")
)

// Wraps a value recovered from a panicking task together with the stack of
// the goroutine it panicked on.
type PanicError struct {
	// The value originally passed to panic().
	Value interface{}

	// Stack trace at the point of the panic.
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v\n\n%s", e.Value, e.Stack)
}

// Returns the panic value if it was an error, so that errors.Is and errors.As
// see through the wrapper.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newPanicError(v interface{}) *PanicError {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{
		Value: v,
		Stack: string(buf[:n]),
	}
}
