package threads

import (
	"context"
	"time"
)

// handle holds the outcome of one in-flight task. The worker that owns
// the task resolves it exactly once; done is closed afterwards, so every
// field is safe to read once done is observed closed.
type handle[T any] struct {
	info TaskInfo
	done chan struct{}

	val T
	err error
	pe  *PanicError
}

func newHandle[T any](info TaskInfo) *handle[T] {
	return &handle[T]{
		info: info,
		done: make(chan struct{}),
	}
}

func (h *handle[T]) resolve(val T, err error, pe *PanicError) {
	h.val, h.err, h.pe = val, err, pe
	close(h.done)
}

// await waits up to budget for the task to resolve. The returned error,
// if any, is a *RunError attributed to this task. A zero budget only
// accepts a task that has already resolved.
//
// ctx is the caller's context, not the run context handed to workers.
func (h *handle[T]) await(ctx context.Context, budget time.Duration) (T, error) {
	var zero T

	select {
	case <-h.done:
		return h.result(ctx)
	default:
	}

	if budget <= 0 {
		return zero, h.fail(KindTimeout, &TimeoutError{Budget: budget})
	}

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case <-h.done:
		return h.result(ctx)
	case <-timer.C:
		return zero, h.fail(KindTimeout, &TimeoutError{Budget: budget})
	case <-ctx.Done():
		return zero, h.fail(KindInterrupted, context.Cause(ctx))
	}
}

func (h *handle[T]) result(ctx context.Context) (T, error) {
	var zero T

	if h.pe != nil {
		return zero, h.fail(KindTask, h.pe)
	}
	if h.err != nil {
		// The task most likely returned because the caller gave up.
		if ctx.Err() != nil {
			return zero, h.fail(KindInterrupted, context.Cause(ctx))
		}
		return zero, h.fail(KindTask, h.err)
	}
	return h.val, nil
}

func (h *handle[T]) fail(kind Kind, cause error) *RunError {
	return &RunError{
		Task: h.info,
		Kind: kind,
		Err:  cause,
	}
}
