// Package retry runs operations with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrMaxAttemptsExceeded is returned when every attempt failed.
	ErrMaxAttemptsExceeded = errors.New("max retry attempts exceeded")
	// ErrContextCancelled is returned when ctx ends while retrying.
	ErrContextCancelled = errors.New("context cancelled during retry")
)

// Config configures retry behavior.
type Config struct {
	// MaxAttempts includes the first attempt.
	MaxAttempts  int
	InitialDelay time.Duration
	// MaxDelay caps the backoff.
	MaxDelay    time.Duration
	Multiplier  float64
	IsRetryable func(error) bool
}

// DefaultConfig returns three attempts starting at 100ms.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		IsRetryable:  DefaultIsRetryable,
	}
}

var retryablePatterns = []string{
	"timeout",
	"deadline exceeded",
	"connection refused",
	"connection reset",
	"no such host",
	"temporary failure",
	"network is unreachable",
	"eof",
}

// DefaultIsRetryable matches network-level failures.
func DefaultIsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range retryablePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func (c *Config) setDefaults() {
	d := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = d.InitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = d.MaxDelay
	}
	if c.Multiplier <= 0 {
		c.Multiplier = d.Multiplier
	}
	if c.IsRetryable == nil {
		c.IsRetryable = d.IsRetryable
	}
}

// Retry calls fn until it succeeds, returns a non-retryable error, the
// attempts run out or ctx ends.
func Retry(ctx context.Context, cfg Config, fn func() error) error {
	cfg.setDefaults()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !cfg.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		backoff := time.Duration(float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1)))
		backoff = min(backoff, cfg.MaxDelay)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrMaxAttemptsExceeded, cfg.MaxAttempts, lastErr)
}
