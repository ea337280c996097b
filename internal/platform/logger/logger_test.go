package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/storefront-api/internal/config"
	"github.com/phrazzld/storefront-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		name       string
		level      string
		debugShown bool
		warnLogged bool
	}{
		{name: "debug", level: "debug", debugShown: true},
		{name: "info", level: "INFO"},
		{name: "error", level: "error"},
		{name: "invalid falls back to info", level: "chatty", warnLogged: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := &logger.TestLogBuffer{}
			l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: tc.level}, buf)
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.Same(t, l, slog.Default())

			l.Debug("debug message")

			if tc.debugShown {
				assert.Contains(t, buf.String(), "debug message")
			} else {
				assert.NotContains(t, buf.String(), "debug message")
			}
			if tc.warnLogged {
				assert.Contains(t, buf.String(), "invalid log level configured")
			}
		})
	}
}

func TestContextLogger(t *testing.T) {
	t.Parallel()
	scoped, buf := logger.NewTestLogger()
	fallback, fallbackBuf := logger.NewTestLogger()

	ctx := logger.WithLogger(context.Background(), scoped.With(slog.String("trace_id", "abc")))
	logger.FromContext(ctx).Info("scoped")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "scoped", entries[0]["msg"])
	assert.Equal(t, "abc", entries[0]["trace_id"])

	logger.FromContextOrDefault(context.Background(), fallback).Info("fallback")
	assert.Contains(t, fallbackBuf.String(), "fallback")

	assert.NotNil(t, logger.FromContextOrDefault(context.Background(), nil))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	level, ok := logger.ParseLevel("warn")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, level)

	level, ok = logger.ParseLevel("")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, level)
}
