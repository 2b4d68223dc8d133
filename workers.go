package threads

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/errgroup"
)

// workerSet owns the goroutines and handles of a single run. It is
// created by launch and must be released with stop followed by wait
// before the run returns.
type workerSet[T any] struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	cfg    *config

	// Workers never return an error to the group; outcomes travel
	// through the handles so that failures are seen in input order.
	eg      errgroup.Group
	handles []*handle[T]

	active atomic.Int64
}

// launch starts one worker per task under a context derived from parent.
func launch[T any](parent context.Context, tasks []Task[T], cfg *config) *workerSet[T] {
	ctx, cancel := context.WithCancelCause(parent)
	ws := &workerSet[T]{
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
		handles: make([]*handle[T], len(tasks)),
	}

	for i, task := range tasks {
		h := newHandle[T](TaskInfo{Index: i, Name: taskName(i)})
		ws.handles[i] = h

		ws.active.Add(1)
		ws.eg.Go(func() error {
			defer ws.active.Add(-1)
			ws.exec(h, task)
			return nil
		})
	}

	return ws
}

// exec runs task with panic recovery and resolves h with the outcome.
func (ws *workerSet[T]) exec(h *handle[T], task Task[T]) {
	if ws.ctx.Err() != nil {
		// Run already over; skip execution silently.
		var zero T
		h.resolve(zero, context.Cause(ws.ctx), nil)
		return
	}

	var (
		val T
		err error
	)

	start := time.Now()
	// Hooks run inside Try so panics are caught by recovery.
	rec := panics.Try(func() {
		if ws.cfg.onStart != nil {
			ws.cfg.onStart(h.info)
		}
		val, err = task(ws.ctx)
	})
	elapsed := time.Since(start)

	pe := newPanicError(rec)
	h.resolve(val, err, pe)

	if ws.cfg.onDone != nil {
		// onDone runs outside Try; an observability hook must not panic.
		if pe != nil {
			err = pe
		}
		ws.cfg.onDone(h.info, err, elapsed)
	}
}

// stop signals every worker to return. A nil cause releases the workers
// of a successful run.
func (ws *workerSet[T]) stop(cause error) {
	ws.cancel(cause)
}

// wait blocks until every worker has returned, or until timeout elapses
// when timeout is positive. It reports whether all workers returned.
func (ws *workerSet[T]) wait(timeout time.Duration) bool {
	if timeout <= 0 {
		_ = ws.eg.Wait()
		return true
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ws.eg.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

// running returns the number of workers that have not returned yet.
func (ws *workerSet[T]) running() int64 {
	return ws.active.Load()
}

func taskName(i int) string {
	return fmt.Sprintf("task[%d]", i)
}
