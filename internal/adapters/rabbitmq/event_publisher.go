package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jsamit27/ava/internal/constants"
	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/contracts"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// publisher то, что нужно адаптеру от rabbitmq_producer.Publisher
type publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// RabbitMQEventPublisher публикует аудит инструментов и эскалаций
type RabbitMQEventPublisher struct {
	producer publisher
}

func NewRabbitMQEventPublisher(producer publisher) (*RabbitMQEventPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("producer cannot be nil")
	}
	return &RabbitMQEventPublisher{producer: producer}, nil
}

func (p *RabbitMQEventPublisher) PublishToolExecuted(ctx context.Context, ev domain.ToolExecutedEvent) error {
	return p.publish(ctx, constants.ToolExecutedRoutingKey, domain.EventTypeToolExecuted, ev)
}

func (p *RabbitMQEventPublisher) PublishEscalationRequested(ctx context.Context, ev domain.EscalationRequestedEvent) error {
	return p.publish(ctx, constants.EscalationRequestedRoutingKey, domain.EventTypeEscalationRequested, ev)
}

func (p *RabbitMQEventPublisher) publish(ctx context.Context, routingKey, eventType string, payload interface{}) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "RabbitMQEventPublisher",
		"routing_key": routingKey,
	})

	msg, err := buildMessage(ctx, eventType, domain.EventVersionV1, payload)
	if err != nil {
		logger.Error("Failed to build event message", err, nil)
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.producer.Publish(publishCtx, routingKey, msg); err != nil {
		logger.Error("Failed to publish event", err, nil)
		return err
	}

	logger.Debug("Event published", port.Fields{"event_type": msg.Headers[constants.HeaderEventType]})
	return nil
}

// buildMessage сериализует событие, проверяет его по схеме и собирает AMQP сообщение
func buildMessage(ctx context.Context, eventType, eventVersion string, payload interface{}) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event %s: %w", eventType, err)
	}

	name := contracts.EventName(eventType)
	version := contracts.EventVersion(eventVersion)
	if err := contracts.ValidateEvent(name, version, body); err != nil {
		return amqp.Publishing{}, fmt.Errorf("event %s does not match its contract: %w", name, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			constants.HeaderEventType:    name,
			constants.HeaderEventVersion: version,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers[constants.HeaderTraceID] = traceID
	}
	return msg, nil
}
