package threads

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchRunsEveryTask(t *testing.T) {
	cfg := defaultConfig()
	tasks := []Task[int]{
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 2, nil },
		func(context.Context) (int, error) { return 0, errors.New("three") },
	}

	ws := launch(context.Background(), tasks, &cfg)
	require.True(t, ws.wait(0))
	assert.Zero(t, ws.running())

	require.Len(t, ws.handles, 3)
	for i, h := range ws.handles {
		assert.Equal(t, i, h.info.Index)
		assert.Equal(t, taskName(i), h.info.Name)
	}
	assert.Equal(t, 2, ws.handles[1].val)
	assert.EqualError(t, ws.handles[2].err, "three")
	ws.stop(nil)
}

func TestLaunchSkipsTasksWhenParentDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var started atomic.Int32
	cfg := defaultConfig()
	cfg.onStart = func(TaskInfo) { started.Add(1) }

	task := func(context.Context) (int, error) { return 1, nil }
	ws := launch(ctx, []Task[int]{task, task}, &cfg)
	require.True(t, ws.wait(0))

	assert.Zero(t, started.Load())
	for _, h := range ws.handles {
		assert.ErrorIs(t, h.err, context.Canceled)
	}
}

func TestStopCancelsWorkersWithCause(t *testing.T) {
	cfg := defaultConfig()
	ready := make(chan struct{})
	task := func(ctx context.Context) (int, error) {
		close(ready)
		<-ctx.Done()
		return 0, context.Cause(ctx)
	}

	ws := launch(context.Background(), []Task[int]{task}, &cfg)
	<-ready

	cause := errors.New("abort")
	ws.stop(cause)
	require.True(t, ws.wait(0))
	assert.Equal(t, cause, ws.handles[0].err)
}

func TestWaitTimeoutReportsStragglers(t *testing.T) {
	cfg := defaultConfig()
	release := make(chan struct{})
	task := func(context.Context) (int, error) {
		<-release
		return 0, nil
	}

	ws := launch(context.Background(), []Task[int]{task}, &cfg)
	ws.stop(nil)

	assert.False(t, ws.wait(20*time.Millisecond))
	assert.EqualValues(t, 1, ws.running())

	close(release)
	assert.True(t, ws.wait(0))
	assert.Zero(t, ws.running())
}

func TestExecRecoversPanic(t *testing.T) {
	var doneErr error
	cfg := defaultConfig()
	cfg.onDone = func(_ TaskInfo, err error, _ time.Duration) { doneErr = err }

	ws := launch(context.Background(), []Task[int]{
		func(context.Context) (int, error) { panic("boom") },
	}, &cfg)
	require.True(t, ws.wait(0))

	pe := ws.handles[0].pe
	require.NotNil(t, pe)
	assert.Equal(t, "boom", pe.Value)
	assert.Same(t, pe, doneErr)
}

func TestExecRecoversOnStartPanic(t *testing.T) {
	cfg := defaultConfig()
	cfg.onStart = func(TaskInfo) { panic("hook") }

	ws := launch(context.Background(), []Task[int]{
		func(context.Context) (int, error) { return 1, nil },
	}, &cfg)
	require.True(t, ws.wait(0))

	require.NotNil(t, ws.handles[0].pe)
	assert.Equal(t, "hook", ws.handles[0].pe.Value)
}
