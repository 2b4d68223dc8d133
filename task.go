package threads

import (
	"context"
	"time"
)

// Task is a unit of work executed by [Threads]. The context is cancelled
// when the run it belongs to fails or finishes; long-running tasks should
// return promptly once it is done.
type Task[T any] func(ctx context.Context) (T, error)

// Func adapts a function that ignores cancellation into a [Task].
// A run waiting on such a task can still time out, but cannot make the
// task itself stop early.
func Func[T any](fn func() (T, error)) Task[T] {
	if fn == nil {
		panic("threads: Func requires a non-nil function")
	}
	return func(context.Context) (T, error) {
		return fn()
	}
}

// Budget supplies the maximum wait allowed for each task's result.
// It is evaluated once per run, when the run begins.
type Budget func() time.Duration

// Fixed returns a [Budget] that always yields d.
func Fixed(d time.Duration) Budget {
	return func() time.Duration { return d }
}
