package threads

import (
	"time"

	"go.uber.org/zap"
)

// TaskInfo provides metadata about a task within a run.
// It is passed to observability hooks registered via [WithOnStart] and [WithOnDone].
type TaskInfo struct {
	// Index is the position of the task in the input order.
	Index int
	Name  string
}

// RunInfo summarizes one materialization of a [Threads] value.
// It is passed to the hook registered via [WithOnRun].
type RunInfo struct {
	Tasks   int
	Budget  time.Duration
	Elapsed time.Duration

	// Err is the aggregated failure, nil on success.
	Err error
}

type config struct {
	logger          *zap.Logger
	panicAsErr      bool
	shutdownTimeout time.Duration
	onStart         func(TaskInfo)
	onDone          func(TaskInfo, error, time.Duration)
	onRun           func(RunInfo)
}

// Option configures a [Threads] runner.
type Option func(*config)

func defaultConfig() config {
	return config{
		logger: zap.NewNop(),
	}
}

// WithLogger sets the logger used for run lifecycle messages.
// A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l == nil {
			l = zap.NewNop()
		}
		c.logger = l
	}
}

// WithPanicAsError converts panics in tasks to [*PanicError] values
// surfaced as task failures, instead of re-raising them on the goroutine
// that materializes the results.
func WithPanicAsError() Option {
	return func(c *config) {
		c.panicAsErr = true
	}
}

// WithShutdownTimeout bounds how long a failed run waits for cancelled
// workers to return. Workers still running after d are logged and left
// to finish on their own.
//
// A timeout of zero (the default) waits for every worker.
// WithShutdownTimeout panics if d is negative.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *config) {
		if d < 0 {
			panic("threads: shutdown timeout must be non-negative")
		}
		c.shutdownTimeout = d
	}
}

// WithOnStart registers a hook invoked when each task begins executing.
// The hook runs inside the task's goroutine before the task function.
func WithOnStart(fn func(TaskInfo)) Option {
	return func(c *config) {
		c.onStart = fn
	}
}

// WithOnDone registers a hook invoked when each task finishes.
// The hook receives the task's error (nil on success) and wall-clock duration.
// Tasks that panicked report their [*PanicError].
func WithOnDone(fn func(TaskInfo, error, time.Duration)) Option {
	return func(c *config) {
		c.onDone = fn
	}
}

// WithOnRun registers a hook invoked once per materialization, after all
// workers have been released.
func WithOnRun(fn func(RunInfo)) Option {
	return func(c *config) {
		c.onRun = fn
	}
}
