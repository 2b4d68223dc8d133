// Package threads runs a fixed collection of independent tasks
// concurrently and either yields all of their results, in input order, or
// fails with one error describing the first task that could not be
// resolved.
//
// # Running Tasks
//
// A [Threads] value pairs a [Budget] with a list of [Task] functions. It
// does no work until it is materialized:
//
//	th := threads.Of(threads.Fixed(8*time.Second),
//	    func(ctx context.Context) (string, error) { return fetch(ctx, "a") },
//	    func(ctx context.Context) (string, error) { return fetch(ctx, "b") },
//	)
//	results, err := th.Values(ctx)
//
// [Threads.Values] returns a slice, [Threads.All] an [iter.Seq2] and
// [Threads.Len] only the count. Each call is a fresh run: every task
// executes again and no result is cached.
//
// # Budget
//
// The budget is evaluated once per run. Every task gets its own goroutine
// at the start of the run; the caller then waits on each task in input
// order, allowing at most the budget for each wait. Because tasks run
// concurrently, wall-clock time is bounded by the slowest task rather than
// by the sum of their durations.
//
// # Failures
//
// The first task, in input order, that times out, fails or is interrupted
// by the caller's context ends the run. The remaining tasks are cancelled
// through their context and the run waits for them to return, so no
// worker outlives the call (see [WithShutdownTimeout] to bound that wait).
//
// The error is always a [*RunError]. Its [Kind] tells timeouts
// ([KindTimeout]), task errors ([KindTask]) and interruptions
// ([KindInterrupted]) apart, and the original cause is kept in the chain.
// Use [IsTimeout], [IsTaskFailure], [IsInterrupted], [TaskOf], [CauseOf]
// and [RootCause] to inspect it. A timeout's root cause is a
// [*TimeoutError], which matches both [ErrTimeout] and
// [context.DeadlineExceeded].
//
// Partial results are never returned.
//
// # Panic Recovery
//
// A panic in a task is captured with its stack trace. By default it is
// re-raised as a [*PanicError] on the goroutine that materializes the run,
// after the other workers have been released. Use [WithPanicAsError] to
// turn it into a [KindTask] failure instead.
//
// # Observability
//
// [WithLogger] attaches a zap logger. [WithOnStart], [WithOnDone] and
// [WithOnRun] register hooks for task and run lifecycle events; the
// [github.com/baxromumarov/threads/threadsprom] subpackage builds
// Prometheus collectors on top of them.
package threads
