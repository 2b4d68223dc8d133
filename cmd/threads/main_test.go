package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPrintsResultsInOrder(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"--budget", "500ms", "--sleep", "20ms,60ms,40ms"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "0:20ms\n1:60ms\n2:40ms\n", stdout.String())
}

func TestRunReportsTimeout(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"--budget", "20ms", "--sleep", "5s,0s,0s"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "kind: timed out")
	assert.Contains(t, stderr.String(), "root cause: no result within 20ms")
}

func TestRunReportsRequestedFailure(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"--budget", "1s", "--sleep", "0s,0s", "--fail", "1"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "kind: failed")
	assert.Contains(t, stderr.String(), "task 1 failed on request")
}

func TestRunReadsEnvironment(t *testing.T) {
	t.Setenv("THREADS_SLEEP", "1ms,2ms")
	t.Setenv("THREADS_BUDGET", "1s")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), nil, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "0:1ms\n1:2ms\n", stdout.String())
}

func TestRunFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("THREADS_SLEEP", "1ms,2ms")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"--sleep", "3ms"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "0:3ms\n", stdout.String())
}

func TestRunRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"--nope"}},
		{name: "bad sleep", args: []string{"--sleep", "soon"}},
		{name: "bad budget", args: []string{"--budget", "later"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, 2, run(context.Background(), tt.args, &stdout, &stderr))
		})
	}
}

func TestRunInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	var stdout, stderr bytes.Buffer

	code := run(ctx, []string{"--budget", "1m", "--sleep", "1m"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "kind: interrupted")
}

func TestParseSleeps(t *testing.T) {
	got, err := parseSleeps(" 1s, 250ms ")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second, 250 * time.Millisecond}, got)

	got, err = parseSleeps("")
	require.NoError(t, err)
	assert.Empty(t, got)
}
