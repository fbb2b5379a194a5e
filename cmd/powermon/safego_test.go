package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		require.FailNow(t, "context was not cancelled")
	}
}

func TestSafeGo_ErrorCancelsWithCause(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	serialErr := errors.New("write: input/output error")
	SafeGo(ctx, cancel, "energy-worker", func(ctx context.Context) error {
		return serialErr
	})

	waitDone(t, ctx)
	cause := context.Cause(ctx)
	assert.ErrorIs(t, cause, serialErr)
	assert.ErrorContains(t, cause, "energy-worker")
}

func TestSafeGo_CleanReturnLeavesContext(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	done := make(chan struct{})
	SafeGo(ctx, cancel, "sender", func(ctx context.Context) error {
		close(done)
		return nil
	})

	<-done
	time.Sleep(10 * time.Millisecond)
	assert.NoError(t, ctx.Err())
}

func TestSuperviseWorker_RetriesPanics(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	var calls atomic.Int32
	superviseWorker(ctx, cancel, "flaky", func(ctx context.Context) error {
		if calls.Add(1) < 3 {
			panic("boom")
		}
		return nil
	}, time.Millisecond)

	assert.Equal(t, int32(3), calls.Load())
	assert.NoError(t, ctx.Err())
}

func TestSuperviseWorker_GivesUp(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	var calls atomic.Int32
	superviseWorker(ctx, cancel, "broken", func(ctx context.Context) error {
		calls.Add(1)
		panic("boom")
	}, time.Microsecond)

	assert.Equal(t, int32(10), calls.Load())
	assert.ErrorContains(t, context.Cause(ctx), "broken panicked 10 times")
}

func TestWaitForShutdown_ReturnsWorkerFailure(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	failure := errors.New("serial port gone")
	cancel(failure)

	assert.ErrorIs(t, waitForShutdown(ctx, cancel), failure)
}

func TestWaitForShutdown_QuitIsClean(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(nil)

	assert.NoError(t, waitForShutdown(ctx, cancel))
}
