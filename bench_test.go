package threads_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sourcegraph/conc/iter"
	"golang.org/x/sync/errgroup"

	"github.com/baxromumarov/threads"
)

func nop(context.Context) (int, error) { return 1, nil }

func taskCountName(n int) string {
	return fmt.Sprintf("n=%d", n)
}

// BenchmarkValues measures the overhead of a run whose tasks do nothing.
func BenchmarkValues(b *testing.B) {
	for _, n := range []int{1, 10, 100, 1000} {
		b.Run(taskCountName(n), func(b *testing.B) {
			tasks := make([]threads.Task[int], n)
			for i := range tasks {
				tasks[i] = nop
			}
			th := threads.New(threads.Fixed(time.Second), tasks)

			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = th.Values(context.Background())
			}
		})
	}
}

// BenchmarkErrgroupOrdered is the baseline: errgroup writing into an
// indexed slice.
func BenchmarkErrgroupOrdered(b *testing.B) {
	for _, n := range []int{1, 10, 100, 1000} {
		b.Run(taskCountName(n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				out := make([]int, n)
				g, ctx := errgroup.WithContext(context.Background())
				for j := range n {
					g.Go(func() error {
						v, err := nop(ctx)
						out[j] = v
						return err
					})
				}
				_ = g.Wait()
			}
		})
	}
}

// BenchmarkConcMap compares against conc's ordered parallel map.
func BenchmarkConcMap(b *testing.B) {
	for _, n := range []int{1, 10, 100, 1000} {
		b.Run(taskCountName(n), func(b *testing.B) {
			in := make([]int, n)

			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = iter.MapErr(in, func(*int) (int, error) {
					return nop(context.Background())
				})
			}
		})
	}
}
