package services

import (
	"context"
	"time"
)

// Retry runs fn up to retries+1 times, sleeping backoff between attempts.
// Retries stop early when the error is final per IsRetryable or the context is
// cancelled. The last error is returned unmodified so callers can classify it.
func Retry(ctx context.Context, retries int, backoff time.Duration, fn func(context.Context) error) error {
	if retries < 0 {
		retries = 0
	}
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
	}
	return err
}
