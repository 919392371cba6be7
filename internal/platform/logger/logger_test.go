package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordloom/wordloom-api/internal/config"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "Warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLevel(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

// Not parallel: setup replaces the process default logger.
func TestSetup_InvalidLevelWarns(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &TestLogBuffer{}
	l := setup(buf, config.ServerConfig{LogLevel: "loud"})
	require.NotNil(t, l)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "loud", entries[0]["configured_level"])
	assert.Same(t, l, slog.Default())
}

func TestSetup_RespectsLevel(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &TestLogBuffer{}
	l := setup(buf, config.ServerConfig{LogLevel: "error"})

	l.Info("hidden")
	l.Error("shown")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
}

func TestContextLogger(t *testing.T) {
	t.Parallel()
	requestLogger, buf := NewTestLogger()
	fallback, fallbackBuf := NewTestLogger()

	ctx := WithLogger(context.Background(), requestLogger.With(slog.String("trace_id", "abc")))
	FromContextOrDefault(ctx, fallback).Info("from request")

	FromContextOrDefault(context.Background(), fallback).Info("from fallback")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0]["trace_id"])

	fbEntries, err := fallbackBuf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, fbEntries, 1)
	assert.Equal(t, "from fallback", fbEntries[0]["msg"])
}

func TestWithLogger_NilKeepsContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	assert.Equal(t, ctx, WithLogger(ctx, nil))
	assert.NotNil(t, FromContext(ctx))
}
