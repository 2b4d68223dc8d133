package threads

import (
	"fmt"

	"github.com/sourcegraph/conc/panics"
)

// PanicError wraps a recovered task panic together with the goroutine
// stack trace captured at the point of the panic.
//
// When [WithPanicAsError] is set, a panicking task fails the run with a
// [KindTask] failure wrapping the *PanicError. Otherwise the *PanicError
// is re-raised via panic once the run has released its workers.
type PanicError struct {
	// Value is the original value passed to panic().
	Value any

	// Stack is the goroutine stack trace at the point of panic.
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap returns the panic value when it is an error, nil otherwise.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newPanicError(r *panics.Recovered) *PanicError {
	if r == nil {
		return nil
	}
	return &PanicError{
		Value: r.Value,
		Stack: string(r.Stack),
	}
}
