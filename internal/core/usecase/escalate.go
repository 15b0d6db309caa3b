package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
)

// Escalator срочное SMS сотруднику на номер эскалации сессии
type Escalator struct {
	sms       port.SMSSenderPort
	publisher port.EventPublisherPort
}

// publisher может быть nil
func NewEscalator(sms port.SMSSenderPort, publisher port.EventPublisherPort) *Escalator {
	return &Escalator{sms: sms, publisher: publisher}
}

func (e *Escalator) Tool(ctx context.Context, sess domain.Session, args map[string]interface{}) domain.ToolResult {
	text, _ := argText(args["message_text"])
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"tool":    "send_escalate_message",
		"preview": domain.Truncate(text, 60),
	})

	var sendErr error
	switch {
	case strings.TrimSpace(text) == "":
		return domain.ToolFailure(domain.CodeInvalidInput, "message_text is required.", nil)
	case strings.TrimSpace(sess.EscalationPhone) == "":
		sendErr = domain.ErrEscalationTarget
	case e.sms == nil:
		sendErr = domain.ErrNoSMSSender
	default:
		sendErr = e.sms.SendSMS(ctx, sess.EscalationPhone, text)
	}

	if e.publisher != nil {
		ev := domain.EscalationRequestedEvent{
			SessionID:  sess.ID,
			LeadID:     sess.LeadID,
			To:         sess.EscalationPhone,
			Text:       text,
			Delivered:  sendErr == nil,
			OccurredAt: time.Now().UTC(),
		}
		if sendErr != nil {
			ev.Error = sendErr.Error()
		}
		if err := e.publisher.PublishEscalationRequested(ctx, ev); err != nil {
			logger.Warn("Failed to publish escalation event", port.Fields{"error": err.Error()})
		}
	}

	if sendErr != nil {
		logger.Error("Escalation SMS failed", sendErr, nil)
		return domain.ToolFailure("", "Failed to send: "+sendErr.Error(), nil)
	}
	logger.Info("Escalation SMS sent", nil)
	return domain.ToolSuccess("Escalation SMS sent.", nil)
}
