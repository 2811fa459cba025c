package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mod5ied/eagle-server/infrastructure/retry"
)

func fast() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	attempts := 0
	err := retry.Retry(context.Background(), fast(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("dial tcp: connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	t.Parallel()

	permanent := errors.New("unauthorized")
	attempts := 0
	err := retry.Retry(context.Background(), fast(), func() error {
		attempts++
		return permanent
	})

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	cause := errors.New("i/o timeout")
	err := retry.Retry(context.Background(), fast(), func() error { return cause })

	require.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
	require.ErrorIs(t, err, cause)
}

func TestRetry_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Retry(ctx, fast(), func() error { return nil })
	require.ErrorIs(t, err, retry.ErrContextCancelled)
}
