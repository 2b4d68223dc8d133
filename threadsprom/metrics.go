// Package threadsprom exposes Prometheus collectors for [threads] runners.
//
//	m, err := threadsprom.New(prometheus.DefaultRegisterer, threadsprom.WithNamespace("fetcher"))
//	if err != nil {
//	    return err
//	}
//	th := threads.New(budget, tasks, m.Options()...)
//
// The returned options install the task and run hooks of the runner, so
// they replace any [threads.WithOnStart], [threads.WithOnDone] or
// [threads.WithOnRun] passed earlier in the same option list.
package threadsprom

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/baxromumarov/threads"
)

// Task outcome label values.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
	OutcomePanic     = "panic"
)

// Run result label values.
const (
	ResultSuccess     = "success"
	ResultTimeout     = "timeout"
	ResultTask        = "task"
	ResultInterrupted = "interrupted"
	ResultInvalid     = "invalid"
)

// Label names.
const (
	OutcomeLabel = "outcome"
	ResultLabel  = "result"
)

// Metrics holds the collectors shared by every runner built with its
// [Metrics.Options].
type Metrics struct {
	tasks        *prometheus.CounterVec
	active       prometheus.Gauge
	taskDuration prometheus.Histogram
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
}

type config struct {
	namespace string
	subsystem string
	buckets   []float64
}

// Option configures [New].
type Option func(*config)

// WithNamespace sets the metric namespace. The default is "threads".
func WithNamespace(ns string) Option {
	return func(c *config) {
		c.namespace = ns
	}
}

// WithSubsystem sets the metric subsystem. The default is empty.
func WithSubsystem(s string) Option {
	return func(c *config) {
		c.subsystem = s
	}
}

// WithBuckets sets the histogram buckets, in seconds, for task and run
// durations. The default is [prometheus.DefBuckets].
func WithBuckets(b ...float64) Option {
	return func(c *config) {
		c.buckets = b
	}
}

// New creates the collectors and registers them with reg.
// It returns the registration error, if any.
func New(reg prometheus.Registerer, opts ...Option) (*Metrics, error) {
	cfg := config{
		namespace: "threads",
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Metrics{
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Subsystem: cfg.subsystem,
			Name:      "tasks_total",
			Help:      "Tasks finished, partitioned by outcome.",
		}, []string{OutcomeLabel}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.namespace,
			Subsystem: cfg.subsystem,
			Name:      "tasks_active",
			Help:      "Tasks currently executing.",
		}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Subsystem: cfg.subsystem,
			Name:      "task_duration_seconds",
			Help:      "Wall-clock duration of each task.",
			Buckets:   cfg.buckets,
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Subsystem: cfg.subsystem,
			Name:      "runs_total",
			Help:      "Runs finished, partitioned by result.",
		}, []string{ResultLabel}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Subsystem: cfg.subsystem,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of each run.",
			Buckets:   cfg.buckets,
		}),
	}

	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.tasks, m.active, m.taskDuration, m.runs, m.runDuration}
}

// Options returns runner options that record into m.
func (m *Metrics) Options() []threads.Option {
	return []threads.Option{
		threads.WithOnStart(func(threads.TaskInfo) {
			m.active.Inc()
		}),
		threads.WithOnDone(func(_ threads.TaskInfo, err error, d time.Duration) {
			m.active.Dec()
			m.tasks.WithLabelValues(Outcome(err)).Inc()
			m.taskDuration.Observe(d.Seconds())
		}),
		threads.WithOnRun(func(info threads.RunInfo) {
			m.runs.WithLabelValues(Result(info.Err)).Inc()
			m.runDuration.Observe(info.Elapsed.Seconds())
		}),
	}
}

// Outcome maps the error reported for a finished task to its outcome
// label value.
func Outcome(err error) string {
	var pe *threads.PanicError
	var re *threads.RunError

	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.As(err, &re):
		// Tasks cancelled by a failing run see the run failure as cause.
		return OutcomeCancelled
	case errors.As(err, &pe):
		return OutcomePanic
	default:
		return OutcomeError
	}
}

// Result maps the error of a finished run to its result label value.
func Result(err error) string {
	if err == nil {
		return ResultSuccess
	}
	if errors.Is(err, threads.ErrInvalidBudget) {
		return ResultInvalid
	}

	kind, _ := threads.KindOf(err)
	switch kind {
	case threads.KindTimeout:
		return ResultTimeout
	case threads.KindInterrupted:
		return ResultInterrupted
	default:
		return ResultTask
	}
}
