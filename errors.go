package threads

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout is matched by every [*TimeoutError] via [errors.Is].
	ErrTimeout = errors.New("threads: task did not complete within budget")

	// ErrInvalidBudget is returned when the budget provider yields a
	// negative duration.
	ErrInvalidBudget = errors.New("threads: invalid budget")
)

// Kind classifies the failure that terminated a run.
type Kind int

const (
	// KindTimeout means the task did not resolve within the budget.
	KindTimeout Kind = iota + 1

	// KindTask means the task itself returned an error or panicked.
	KindTask

	// KindInterrupted means the caller's context was done before the
	// task resolved.
	KindInterrupted
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timed out"
	case KindTask:
		return "failed"
	case KindInterrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// RunError is the aggregated failure of a run. It carries the [TaskInfo]
// of the first task, in input order, that could not be resolved, the
// [Kind] of that failure and its original cause.
type RunError struct {
	Task TaskInfo
	Kind Kind
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("threads: %s %s: %v", e.Task.Name, e.Kind, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// TimeoutError is the root cause of a [KindTimeout] failure.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no result within %s", e.Budget)
}

// Is reports true for [ErrTimeout] and [context.DeadlineExceeded].
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout || target == context.DeadlineExceeded
}

// KindOf returns the [Kind] of the first [*RunError] in err's chain.
func KindOf(err error) (Kind, bool) {
	var re *RunError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

// IsTimeout reports whether err is a run failure caused by a task
// exceeding its budget.
func IsTimeout(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindTimeout
}

// IsTaskFailure reports whether err is a run failure caused by a task
// returning an error or panicking.
func IsTaskFailure(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindTask
}

// IsInterrupted reports whether err is a run failure caused by the
// caller's context ending first.
func IsInterrupted(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindInterrupted
}

// TaskOf extracts the [TaskInfo] from the first [*RunError] in err's chain.
// Returns false if no RunError is found.
func TaskOf(err error) (TaskInfo, bool) {
	var re *RunError
	if errors.As(err, &re) {
		return re.Task, true
	}
	return TaskInfo{}, false
}

// CauseOf unwraps the first [*RunError] in err's chain and returns its
// underlying cause. If err is not a RunError, it is returned as-is.
// Returns nil if err is nil.
func CauseOf(err error) error {
	if err == nil {
		return nil
	}

	var re *RunError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}

// RootCause follows the single-error Unwrap chain of err to its end.
// Joined errors stop the walk. Returns nil if err is nil.
func RootCause(err error) error {
	for err != nil {
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		next := u.Unwrap()
		if next == nil {
			return err
		}
		err = next
	}
	return nil
}
