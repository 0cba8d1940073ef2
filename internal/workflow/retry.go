package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"robora/internal/query"
)

// RetryConfig bounds the batch-level retry loop.
type RetryConfig struct {
	// MaxRetries is the number of re-attempts after the first try.
	// The default (4) allows up to 5 total attempts.
	MaxRetries int

	// BaseDelay seeds the exponential backoff: attempt n (0-indexed)
	// waits BaseDelay * 2^n.
	BaseDelay time.Duration
}

// DefaultRetryConfig mirrors the 2s/4s/8s/16s schedule.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 4, BaseDelay: 2 * time.Second}
}

// Backoff returns the wait before re-attempt n (0-indexed).
func (c RetryConfig) Backoff(attempt int) time.Duration {
	return c.BaseDelay * (1 << attempt)
}

// Retry re-invokes fn with exponential backoff until it succeeds, fails
// with a non-transient error, or the attempt budget is exhausted. The unit
// of retry is a whole dispatch, not a single question: because the
// orchestrator skips persisted answers, a re-invocation after partial
// success only redoes the unanswered remainder.
func Retry(ctx context.Context, cfg RetryConfig, log *zap.Logger, fn func(context.Context) error) error {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 2 * time.Second
	}

	var err error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !query.IsTransient(err) {
			return err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		delay := cfg.Backoff(attempt)
		log.Warn("dispatch failed, backing off",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", cfg.MaxRetries+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("retries exhausted after %d attempts: %w", cfg.MaxRetries+1, err)
}
