package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newBufferLogger(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger, err := newLogger(LogConfig{Level: level, Format: "json"}, zapcore.AddSync(buf))
	require.NoError(t, err)
	return logger, buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	return entry
}

func TestNewLogger_JSONFields(t *testing.T) {
	t.Parallel()

	logger, buf := newBufferLogger(t, "info")
	logger.Info("route registered", String("route", "users"), Int("patterns", 2))

	entry := decodeLine(t, buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "route registered", entry["message"])
	assert.Equal(t, "users", entry["route"])
	assert.Equal(t, float64(2), entry["patterns"])
	assert.Contains(t, entry, "timestamp")
	assert.Contains(t, entry, "caller")
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	logger, buf := newBufferLogger(t, "warn")
	logger.Debug("hidden")
	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Equal(t, "warn", decodeLine(t, buf)["level"])
}

func TestNewLogger_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewLogger(LogConfig{Level: "verbose"})
	assert.ErrorContains(t, err, "invalid log level")

	_, err = NewLogger(LogConfig{Level: "info", Format: "xml"})
	assert.ErrorContains(t, err, "unknown log format")
}

func TestNewLogger_Outputs(t *testing.T) {
	t.Parallel()

	for _, cfg := range []LogConfig{
		DefaultLogConfig(),
		{Level: "debug", Format: "console", Output: "stderr"},
		{Output: filepath.Join(t.TempDir(), "avaroute.log")},
	} {
		logger, err := NewLogger(cfg)
		require.NoError(t, err)
		logger.Debug("logger ready")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{in: "", want: zapcore.InfoLevel},
		{in: "debug", want: zapcore.DebugLevel},
		{in: "WARN", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestLogger_WithContext(t *testing.T) {
	t.Parallel()

	logger, buf := newBufferLogger(t, "info")

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithTraceID(ctx, "trace-1")
	ctx = ContextWithSpanID(ctx, "span-1")
	logger.WithContext(ctx).With(String("route", "users")).Info("dispatched")

	entry := decodeLine(t, buf)
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "trace-1", entry["trace_id"])
	assert.Equal(t, "span-1", entry["span_id"])
	assert.Equal(t, "users", entry["route"])

	assert.Same(t, logger, logger.WithContext(context.Background()))
}

func TestContextIDs_Empty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))
	assert.Empty(t, TraceIDFromContext(ctx))
	assert.Empty(t, SpanIDFromContext(ctx))
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	logger := NopLogger()
	logger.Info("discarded", String("k", "v"))
	assert.NotNil(t, logger.With(Bool("b", true)))
}

func TestFromZap(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	logger := FromZap(zap.New(core))

	logger.Debug("compiled", Int("patterns", 3))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "compiled", entry.Message)
	assert.Equal(t, int64(3), entry.ContextMap()["patterns"])
}
