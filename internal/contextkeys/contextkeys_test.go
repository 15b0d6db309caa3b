package contextkeys

import (
	"context"
	"testing"

	"github.com/jsamit27/ava/internal/core/port"
	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	port.LoggerPort
	name string
}

func TestLoggerFromContext_FallsBackToNoop(t *testing.T) {
	logger := LoggerFromContext(context.Background())
	assert.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.WithFields(port.Fields{"a": 1}).Info("ignored", nil)
	})
}

func TestLoggerRoundTrip(t *testing.T) {
	want := &recordingLogger{name: "request"}
	ctx := ContextWithLogger(context.Background(), want)
	assert.Same(t, want, LoggerFromContext(ctx))
}

func TestTraceID(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
	ctx := ContextWithTraceID(context.Background(), "0b6a9f0e-trace")
	assert.Equal(t, "0b6a9f0e-trace", TraceIDFromContext(ctx))
}
