package logger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mod5ied/eagle-server/infrastructure/logger"
)

func newTestLogger(t *testing.T) logger.Logger {
	t.Helper()

	l, err := logger.New(logger.Config{Level: "warn", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	return l
}

func TestFromContext_ReturnsStoredLogger(t *testing.T) {
	t.Parallel()

	l := newTestLogger(t).With(logger.String("request_id", "req-1"))
	ctx := logger.WithContext(context.Background(), l)

	assert.Same(t, l, logger.FromContext(ctx))
}

func TestFromContext_FallbackIsSingleton(t *testing.T) {
	t.Parallel()

	a := logger.FromContext(context.Background())
	b := logger.FromContext(context.Background())

	require.NotNil(t, a)
	assert.Same(t, a, b)

	a.Warn("fallback logger must not panic", logger.String("key", "value"))
}

func TestWithContext_LastWriteWins(t *testing.T) {
	t.Parallel()

	first := newTestLogger(t)
	second := newTestLogger(t)

	ctx := logger.WithContext(context.Background(), first)
	ctx = logger.WithContext(ctx, second)

	assert.Same(t, second, logger.FromContext(ctx))
}

func TestNew_ConsoleFormat(t *testing.T) {
	t.Parallel()

	l, err := logger.New(logger.Config{
		Level:       "debug",
		Format:      logger.FormatConsole,
		Development: true,
		OutputPaths: []string{"stderr"},
	})
	require.NoError(t, err)

	l.Debug("console logger works", logger.Int("n", 1))
}
