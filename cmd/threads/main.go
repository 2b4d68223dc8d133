// Command threads runs a batch of sleeping tasks through a threads runner
// and prints their results in input order.
//
//	threads --budget 8s --sleep 2s,6s,4s
//	THREADS_BUDGET=1s threads --sleep 3s,0s,0s
//
// Exit status is 0 on success, 1 when the run fails and 2 on bad input.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/baxromumarov/threads"
)

const envPrefix = "THREADS"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	budget  time.Duration
	sleeps  []time.Duration
	fail    int
	verbose bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parse(args, stderr)
	if err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(stderr, "threads:", err)
		}
		return 2
	}

	logger := newLogger(stderr, opts.verbose)
	defer func() { _ = logger.Sync() }()

	th := threads.New(threads.Fixed(opts.budget), buildTasks(opts), threads.WithLogger(logger))

	results, err := th.Values(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		if kind, ok := threads.KindOf(err); ok {
			fmt.Fprintln(stderr, "kind:", kind)
		}
		fmt.Fprintln(stderr, "root cause:", threads.RootCause(err))
		return 1
	}

	for _, r := range results {
		fmt.Fprintln(stdout, r)
	}
	return 0
}

func parse(args []string, stderr io.Writer) (options, error) {
	fs := pflag.NewFlagSet("threads", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Duration("budget", 8*time.Second, "maximum wait for each task's result")
	fs.String("sleep", "2s,6s,4s", "comma-separated sleep duration of each task")
	fs.Int("fail", -1, "index of a task that fails immediately instead of sleeping")
	fs.Bool("verbose", false, "log run lifecycle at debug level")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return options{}, err
	}

	sleeps, err := parseSleeps(v.GetString("sleep"))
	if err != nil {
		return options{}, err
	}

	return options{
		budget:  v.GetDuration("budget"),
		sleeps:  sleeps,
		fail:    v.GetInt("fail"),
		verbose: v.GetBool("verbose"),
	}, nil
}

func parseSleeps(s string) ([]time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var out []time.Duration
	for _, part := range strings.Split(s, ",") {
		d, err := time.ParseDuration(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid sleep %q: %w", part, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func buildTasks(opts options) []threads.Task[string] {
	tasks := make([]threads.Task[string], len(opts.sleeps))
	for i, d := range opts.sleeps {
		label := fmt.Sprintf("%d:%s", i, d)

		if i == opts.fail {
			tasks[i] = func(context.Context) (string, error) {
				return "", fmt.Errorf("task %d failed on request", i)
			}
			continue
		}

		tasks[i] = func(ctx context.Context) (string, error) {
			timer := time.NewTimer(d)
			defer timer.Stop()

			select {
			case <-timer.C:
				return label, nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return tasks
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	if verbose {
		level = zapcore.DebugLevel
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}
