package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"soundcheck/internal/services"
)

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := services.Retry(context.Background(), 2, time.Millisecond, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return services.ErrTransient
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry returned error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryStopsOnFinalError(t *testing.T) {
	attempts := 0
	final := services.Wrap(services.ErrValidation, "test", "", "bad input", nil)
	err := services.Retry(context.Background(), 5, time.Millisecond, func(context.Context) error {
		attempts++
		return final
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected single attempt for final error, got %d", attempts)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := services.Retry(context.Background(), 2, time.Millisecond, func(context.Context) error {
		attempts++
		return errors.New("still failing")
	})
	if err == nil || err.Error() != "still failing" {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := services.Retry(ctx, 3, time.Hour, func(context.Context) error {
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
