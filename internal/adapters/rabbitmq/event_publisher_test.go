package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jsamit27/ava/internal/constants"
	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	routingKey string
	msg        amqp.Publishing
	deadline   bool
}

type fakeProducer struct {
	sent []published
	err  error
}

func (f *fakeProducer) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	_, hasDeadline := ctx.Deadline()
	f.sent = append(f.sent, published{routingKey: routingKey, msg: msg, deadline: hasDeadline})
	return f.err
}

func toolEvent() domain.ToolExecutedEvent {
	return domain.ToolExecutedEvent{
		SessionID:  "s-1",
		LeadID:     "42",
		Tool:       "car_retrieve",
		Status:     domain.ToolStatusSuccess,
		Message:    "Car retrieved.",
		DurationMs: 7,
		OccurredAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublishToolExecuted(t *testing.T) {
	producer := &fakeProducer{}
	pub, err := NewRabbitMQEventPublisher(producer)
	require.NoError(t, err)

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-1")
	require.NoError(t, pub.PublishToolExecuted(ctx, toolEvent()))

	require.Len(t, producer.sent, 1)
	got := producer.sent[0]
	assert.Equal(t, constants.ToolExecutedRoutingKey, got.routingKey)
	assert.True(t, got.deadline)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "ToolExecutedEvent", got.msg.Headers[constants.HeaderEventType])
	assert.Equal(t, "1.0.0", got.msg.Headers[constants.HeaderEventVersion])
	assert.Equal(t, "trace-1", got.msg.Headers[constants.HeaderTraceID])
	assert.JSONEq(t, `{"session_id":"s-1","lead_id":"42","tool":"car_retrieve","status":"success",
		"message":"Car retrieved.","duration_ms":7,"occurred_at":"2025-05-01T12:00:00Z"}`, string(got.msg.Body))
}

func TestPublishEscalationRequested_NoTraceHeader(t *testing.T) {
	producer := &fakeProducer{}
	pub, err := NewRabbitMQEventPublisher(producer)
	require.NoError(t, err)

	ev := domain.EscalationRequestedEvent{
		SessionID:  "s-1",
		To:         "+15551234567",
		Text:       "Customer asks for a callback",
		Delivered:  false,
		Error:      "sms sender is not configured",
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, pub.PublishEscalationRequested(context.Background(), ev))

	require.Len(t, producer.sent, 1)
	assert.Equal(t, constants.EscalationRequestedRoutingKey, producer.sent[0].routingKey)
	assert.Equal(t, "EscalationRequestedEvent", producer.sent[0].msg.Headers[constants.HeaderEventType])
	assert.NotContains(t, producer.sent[0].msg.Headers, constants.HeaderTraceID)
}

func TestPublish_ContractViolationIsNotSent(t *testing.T) {
	producer := &fakeProducer{}
	pub, err := NewRabbitMQEventPublisher(producer)
	require.NoError(t, err)

	ev := toolEvent()
	ev.Status = "maybe"
	assert.Error(t, pub.PublishToolExecuted(context.Background(), ev))
	assert.Empty(t, producer.sent)
}

func TestPublish_ProducerError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("channel closed")}
	pub, err := NewRabbitMQEventPublisher(producer)
	require.NoError(t, err)

	err = pub.PublishToolExecuted(context.Background(), toolEvent())
	assert.EqualError(t, err, "channel closed")
}

func TestNewRabbitMQEventPublisher_NilProducer(t *testing.T) {
	_, err := NewRabbitMQEventPublisher(nil)
	assert.Error(t, err)
}

type capturingLogger struct {
	level  string
	msg    string
	err    error
	fields port.Fields
}

func (c *capturingLogger) Info(msg string, f port.Fields)  { c.level, c.msg, c.fields = "info", msg, f }
func (c *capturingLogger) Warn(msg string, f port.Fields)  { c.level, c.msg, c.fields = "warn", msg, f }
func (c *capturingLogger) Debug(msg string, f port.Fields) { c.level, c.msg, c.fields = "debug", msg, f }
func (c *capturingLogger) Error(msg string, err error, f port.Fields) {
	c.level, c.msg, c.err, c.fields = "error", msg, err, f
}
func (c *capturingLogger) WithFields(port.Fields) port.LoggerPort { return c }

func TestPkgLoggerBridge(t *testing.T) {
	inner := &capturingLogger{}
	bridge := NewPkgLoggerBridge(inner)

	bridge.Info("Exchange declared", "name", "ava_events_exchange", 17, "skipped", "dangling")
	assert.Equal(t, "info", inner.level)
	assert.Equal(t, port.Fields{"name": "ava_events_exchange"}, inner.fields)

	boom := errors.New("boom")
	bridge.Error(boom, "Publish failed", "routing_key", "ava.tool.executed")
	assert.Equal(t, "error", inner.level)
	assert.Same(t, boom, inner.err)
	assert.Equal(t, "ava.tool.executed", inner.fields["routing_key"])
}
