package threads

import (
	"context"
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"
)

// Threads runs a fixed collection of tasks concurrently, bounding the wait
// for each task's result by the same [Budget].
//
// A Threads value does no work until it is materialized through
// [Threads.Values], [Threads.All] or [Threads.Len]. Every materialization
// is an independent run: all tasks execute again and nothing is cached.
// Runs may be materialized concurrently from several goroutines.
type Threads[T any] struct {
	budget Budget
	tasks  []Task[T]
	cfg    config
}

// New returns a runner for tasks. The slice is copied; later changes to it
// have no effect on the runner.
//
// New panics if budget or any task is nil.
func New[T any](budget Budget, tasks []Task[T], opts ...Option) *Threads[T] {
	if budget == nil {
		panic("threads: New requires a non-nil budget")
	}
	for i, task := range tasks {
		if task == nil {
			panic(fmt.Sprintf("threads: task[%d] must not be nil", i))
		}
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Threads[T]{
		budget: budget,
		tasks:  append([]Task[T](nil), tasks...),
		cfg:    cfg,
	}
}

// Of is shorthand for [New] with default options.
//
//	th := threads.Of(threads.Fixed(8*time.Second), fetchA, fetchB, fetchC)
//	results, err := th.Values(ctx)
func Of[T any](budget Budget, tasks ...Task[T]) *Threads[T] {
	return New(budget, tasks)
}

// Size returns the number of tasks, without running them.
func (th *Threads[T]) Size() int {
	return len(th.tasks)
}

// Values runs every task and returns their results in input order.
//
// If any task cannot be resolved, Values returns nil and a single
// [*RunError] describing the first failure in input order. Tasks still
// running at that point are cancelled through their context, and Values
// does not return until they have exited (see [WithShutdownTimeout]).
//
// A task that panics re-raises its [*PanicError] on the calling goroutine
// unless [WithPanicAsError] is set.
func (th *Threads[T]) Values(ctx context.Context) ([]T, error) {
	return th.run(ctx)
}

// All returns a sequence over the results of a run. Each range over the
// sequence starts a new run. On failure the sequence yields exactly one
// pair: the zero value and the run's error.
func (th *Threads[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		vals, err := th.run(ctx)
		if err != nil {
			var zero T
			yield(zero, err)
			return
		}
		for _, v := range vals {
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Len runs every task and returns the number of results.
func (th *Threads[T]) Len(ctx context.Context) (int, error) {
	vals, err := th.run(ctx)
	if err != nil {
		return 0, err
	}
	return len(vals), nil
}

func (th *Threads[T]) run(ctx context.Context) (vals []T, err error) {
	if len(th.tasks) == 0 {
		return []T{}, nil
	}

	budget := th.budget()
	start := time.Now()
	log := th.cfg.logger.With(
		zap.Int("tasks", len(th.tasks)),
		zap.Duration("budget", budget),
	)

	defer func() {
		if th.cfg.onRun != nil {
			th.cfg.onRun(RunInfo{
				Tasks:   len(th.tasks),
				Budget:  budget,
				Elapsed: time.Since(start),
				Err:     err,
			})
		}
	}()

	if budget < 0 {
		log.Warn("rejecting run with negative budget")
		return nil, fmt.Errorf("%w: %s is negative", ErrInvalidBudget, budget)
	}

	if ctx.Err() != nil {
		re := &RunError{
			Task: TaskInfo{Index: 0, Name: taskName(0)},
			Kind: KindInterrupted,
			Err:  context.Cause(ctx),
		}
		log.Warn("run interrupted before start", zap.Error(re.Err))
		return nil, re
	}

	log.Debug("run started")
	ws := launch(ctx, th.tasks, &th.cfg)

	out := make([]T, len(th.tasks))
	for i, h := range ws.handles {
		v, werr := h.await(ctx, budget)
		if werr == nil {
			out[i] = v
			continue
		}

		re := th.abort(ws, werr.(*RunError), log)
		if pe, ok := re.Err.(*PanicError); ok && !th.cfg.panicAsErr {
			err = re
			panic(pe)
		}
		return nil, re
	}

	ws.stop(nil)
	ws.wait(0)

	log.Debug("run completed", zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

// abort cancels the remaining workers and waits for them according to the
// configured shutdown timeout. It returns re unchanged.
func (th *Threads[T]) abort(ws *workerSet[T], re *RunError, log *zap.Logger) *RunError {
	ws.stop(re)

	log = log.With(
		zap.String("task", re.Task.Name),
		zap.Stringer("kind", re.Kind),
	)

	if !ws.wait(th.cfg.shutdownTimeout) {
		log.Warn("workers still running after shutdown timeout",
			zap.Int64("running", ws.running()),
			zap.Duration("timeout", th.cfg.shutdownTimeout),
		)
	}

	if pe, ok := re.Err.(*PanicError); ok {
		log.Error("task panicked", zap.Any("value", pe.Value))
		return re
	}

	log.Warn("run failed", zap.Error(re.Err))
	return re
}
