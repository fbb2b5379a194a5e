package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// SafeGo launches a worker goroutine with panic recovery and retry logic.
// On panic, retries with exponential backoff (max 10 retries).
// Retry count resets if worker ran for 2+ minutes before failing.
// A returned error or exhausted retries cancel ctx with the failure as cause.
func SafeGo(
	ctx context.Context,
	cancel context.CancelCauseFunc,
	name string,
	fn func(ctx context.Context) error,
) {
	go superviseWorker(ctx, cancel, name, fn, time.Second)
}

func superviseWorker(
	ctx context.Context,
	cancel context.CancelCauseFunc,
	name string,
	fn func(ctx context.Context) error,
	delay time.Duration,
) {
	const maxRetries = 10
	const maxDelay = 10 * time.Minute
	const resetAfter = 2 * time.Minute

	initialDelay := delay
	retries := 0

	for {
		startTime := time.Now()
		var panicValue any
		var err error

		func() {
			defer func() {
				panicValue = recover()
			}()
			err = fn(ctx)
		}()

		if panicValue == nil {
			if err != nil {
				log.Errorf("%s failed: %v", name, err)
				cancel(errors.Wrap(err, name))
			}
			return
		}

		// If ran for resetAfter duration before panicking, reset retry state
		if time.Since(startTime) >= resetAfter {
			retries = 0
			delay = initialDelay
		}

		retries++
		log.Errorf("Panic in %s (attempt %d/%d): %v", name, retries, maxRetries, panicValue)

		if retries >= maxRetries {
			log.Errorf("%s failed after %d retries, shutting down", name, maxRetries)
			cancel(errors.Errorf("%s panicked %d times", name, maxRetries))
			return
		}

		log.Infof("%s will retry in %v", name, delay)
		select {
		case <-time.After(delay):
			delay = min(delay*2, maxDelay)
		case <-ctx.Done():
			return
		}
	}
}
