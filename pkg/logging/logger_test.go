package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewLoggerWithCore(core), logs
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	require.NotNil(t, logger)
	assert.NotNil(t, logger.sugar)
}

func TestLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected zapcore.Level
	}{
		{"debug level", "DEBUG", zapcore.DebugLevel},
		{"info level", "INFO", zapcore.InfoLevel},
		{"warn level", "WARN", zapcore.WarnLevel},
		{"warning level", "WARNING", zapcore.WarnLevel},
		{"error level", "ERROR", zapcore.ErrorLevel},
		{"lowercase debug", "debug", zapcore.DebugLevel},
		{"invalid level", "INVALID", zapcore.InfoLevel},
		{"empty value", "", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(LevelEnv, tt.envValue)
			assert.Equal(t, tt.expected, getLogLevelFromEnv())
		})
	}
}

func TestCorrelationID(t *testing.T) {
	id1, id2 := GenerateCorrelationID(), GenerateCorrelationID()
	assert.NotEqual(t, id1, id2)
	_, err := uuid.Parse(id1)
	assert.NoError(t, err)

	ctx := WithCorrelationID(context.Background(), "frame-42")
	assert.Equal(t, "frame-42", GetCorrelationID(ctx))

	generated := GetCorrelationID(WithCorrelationID(context.Background(), ""))
	assert.NotEmpty(t, generated)

	assert.Empty(t, GetCorrelationID(context.Background()))
}

func TestLoggerMethods(t *testing.T) {
	logger, logs := observed()
	ctx := WithCorrelationID(context.Background(), "abc")

	logger.Debug(ctx, "debug message", "frame", 1)
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message", errors.New("boom"), "level", "ramp")

	entries := logs.All()
	require.Len(t, entries, 4)

	levels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		assert.Equal(t, levels[i], e.Level)
		assert.Equal(t, "abc", e.ContextMap()["correlation_id"])
	}
	assert.Equal(t, int64(1), entries[0].ContextMap()["frame"])
	assert.Equal(t, "boom", entries[3].ContextMap()["error"])
	assert.Equal(t, "ramp", entries[3].ContextMap()["level"])
}

func TestLogWithoutCorrelationID(t *testing.T) {
	logger, logs := observed()
	logger.Info(context.Background(), "plain")

	require.Equal(t, 1, logs.Len())
	_, ok := logs.All()[0].ContextMap()["correlation_id"]
	assert.False(t, ok)
}

func TestSanitize(t *testing.T) {
	logger, logs := observed()
	logger.Info(context.Background(), "login",
		"password", "secret123",
		"auth_token", "bearer",
		"username", "player",
	)

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["password"])
	assert.Equal(t, "[REDACTED]", fields["auth_token"])
	assert.Equal(t, "player", fields["username"])
}

func TestWith(t *testing.T) {
	logger, logs := observed()
	logger.With("session", "s-1").Info(context.Background(), "frame")

	assert.Equal(t, "s-1", logs.All()[0].ContextMap()["session"])
}

func TestNopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNopLogger().Error(context.Background(), "ignored", errors.New("x"))
	})
}

func TestWrapError(t *testing.T) {
	base := errors.New("root cause")

	assert.Nil(t, WrapError(nil, "context"))

	wrapped := WrapError(base, "loading level %d", 3)
	assert.EqualError(t, wrapped, "loading level 3: root cause")
	assert.ErrorIs(t, wrapped, base)
}
