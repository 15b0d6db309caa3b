package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
)

// ToolHandler исполнитель одного инструмента. Ошибки возвращаются в ToolResult.
type ToolHandler func(ctx context.Context, sess domain.Session, args map[string]interface{}) domain.ToolResult

const offerForbiddenMessage = "Ava cannot set buyer_offer_cents. Only GMTV employees can set the company's offer."

// Инструменты, которым запрещено менять предложение компании
var offerGuardedTools = map[string]bool{"car_add": true, "car_update": true}

// ToolSet все зависимости инструментов
type ToolSet struct {
	Cars      *CarTools
	Pickups   *PickupTools
	Schedules *ScheduleTools
	Closest   *ClosestAuctionFinder
	Escalator *Escalator
}

// Handlers таблица имя -> обработчик, имена совпадают с каталогом планировщика
func (ts ToolSet) Handlers() map[string]ToolHandler {
	return map[string]ToolHandler{
		"get_buyer_availability": ts.Schedules.Availability,
		"add_buyer_schedule":     ts.Schedules.Add,
		"car_retrieve":           ts.Cars.Retrieve,
		"car_update":             ts.Cars.Update,
		"car_add":                ts.Cars.Add,
		"get_all_cars":           ts.Cars.ListAll,
		"pickup_retrieve":        ts.Pickups.Retrieve,
		"pickup_update":          ts.Pickups.Update,
		"pickup_add":             ts.Pickups.Add,
		"get_all_pickups":        ts.Pickups.ListAll,
		"get_closest":            ts.Closest.Tool,
		"send_escalate_message":  ts.Escalator.Tool,
	}
}

type ExecuteToolUseCase struct {
	handlers  map[string]ToolHandler
	publisher port.EventPublisherPort
	metrics   port.MetricsPort
}

// publisher и metrics могут быть nil
func NewExecuteToolUseCase(handlers map[string]ToolHandler, publisher port.EventPublisherPort, metrics port.MetricsPort) *ExecuteToolUseCase {
	return &ExecuteToolUseCase{handlers: handlers, publisher: publisher, metrics: metrics}
}

func (uc *ExecuteToolUseCase) Execute(ctx context.Context, sess domain.Session, call domain.ToolCall) domain.ToolResult {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "ExecuteTool",
		"tool":       call.Name,
		"session_id": sess.ID,
	})
	ucLogger.Info("Use case started", nil)

	args := call.Args
	if args == nil {
		args = map[string]interface{}{}
	}

	start := time.Now()
	var res domain.ToolResult

	handler, ok := uc.handlers[call.Name]
	switch {
	case !ok:
		res = domain.ToolFailure(domain.CodeUnknownTool, fmt.Sprintf("Unknown tool '%s'.", call.Name), nil)
	case offerGuardedTools[call.Name] && hasKey(args, "buyer_offer_cents"):
		res = domain.ToolFailure(domain.CodeForbidden, offerForbiddenMessage, nil)
	default:
		res = handler(contextkeys.ContextWithLogger(ctx, ucLogger), sess, args)
	}
	elapsed := time.Since(start)

	if uc.metrics != nil {
		uc.metrics.ObserveTool(call.Name, res.Status, elapsed.Seconds())
	}
	if uc.publisher != nil {
		ev := domain.ToolExecutedEvent{
			SessionID:  sess.ID,
			LeadID:     sess.LeadID,
			Tool:       call.Name,
			Status:     res.Status,
			Code:       res.Code,
			Message:    res.Message,
			DurationMs: elapsed.Milliseconds(),
			OccurredAt: time.Now().UTC(),
		}
		if err := uc.publisher.PublishToolExecuted(ctx, ev); err != nil {
			ucLogger.Warn("Failed to publish tool event", port.Fields{"error": err.Error()})
		}
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"status":      res.Status,
		"code":        res.Code,
		"duration_ms": elapsed.Milliseconds(),
	})
	return res
}

func hasKey(m map[string]interface{}, key string) bool {
	_, ok := m[key]
	return ok
}
