package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ScheduleTools расписание покупателя текущей сессии
type ScheduleTools struct {
	schedules port.ScheduleRepositoryPort
}

func NewScheduleTools(schedules port.ScheduleRepositoryPort) *ScheduleTools {
	return &ScheduleTools{schedules: schedules}
}

func sessionBuyerID(sess domain.Session) (int64, *domain.ToolResult) {
	id, ok := domain.NumericRef(sess.BuyerID)
	if !ok {
		res := domain.ToolFailure(domain.CodeInvalidInput, "buyer_id must be an integer.",
			map[string]interface{}{"received": sess.BuyerID})
		return 0, &res
	}
	return id, nil
}

func (t *ScheduleTools) Availability(ctx context.Context, sess domain.Session, _ map[string]interface{}) domain.ToolResult {
	buyerID, bad := sessionBuyerID(sess)
	if bad != nil {
		return *bad
	}
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"tool": "get_buyer_availability", "buyer_id": buyerID})

	exists, err := t.schedules.BuyerExists(ctx, buyerID)
	if err != nil {
		logger.Error("Buyer lookup failed", err, nil)
		return storageFailure(err, "Lookup")
	}
	if !exists {
		return domain.ToolFailure(domain.CodeNotFound, fmt.Sprintf("Buyer id %d not found.", buyerID), nil)
	}

	schedules, err := t.schedules.ListByBuyer(ctx, buyerID)
	if err != nil {
		logger.Error("Schedule lookup failed", err, nil)
		return storageFailure(err, "Lookup")
	}
	if schedules == nil {
		schedules = []domain.Schedule{}
	}

	msg := "No schedules found."
	if len(schedules) > 0 {
		msg = "Availability retrieved."
	}
	return domain.ToolSuccess(msg, map[string]interface{}{"buyer_id": buyerID, "schedules": schedules})
}

// Add записывает встречу, если время у покупателя свободно
func (t *ScheduleTools) Add(ctx context.Context, sess domain.Session, args map[string]interface{}) domain.ToolResult {
	buyerID, bad := sessionBuyerID(sess)
	if bad != nil {
		return *bad
	}
	if len(withoutNil(args)) == 0 {
		return domain.ToolFailure(domain.CodeInvalidInput, "patch must be a non-empty object.", nil)
	}

	desc, _ := argText(args["description"])
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return domain.ToolFailure(domain.CodeInvalidInput, "description is required.", nil)
	}

	priority := domain.PriorityMedium
	if raw, _ := argText(args["priority"]); strings.TrimSpace(raw) != "" {
		priority = cases.Title(language.English).String(strings.TrimSpace(raw))
	}
	if !domain.IsValidPriority(priority) {
		return domain.ToolFailure(domain.CodeInvalidInput,
			fmt.Sprintf("priority must be one of [%s]", strings.Join(domain.Priorities, ", ")),
			map[string]interface{}{"received": args["priority"]})
	}

	rawTime, _ := argText(args["schedule_time"])
	st := domain.NormalizeScheduleTime(rawTime)
	if st == "" {
		return domain.ToolFailure(domain.CodeInvalidInput, "schedule_time is invalid.",
			map[string]interface{}{"received": rawTime})
	}

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"tool":          "add_buyer_schedule",
		"buyer_id":      buyerID,
		"schedule_time": st,
	})

	exists, err := t.schedules.BuyerExists(ctx, buyerID)
	if err != nil {
		logger.Error("Buyer lookup failed", err, nil)
		return storageFailure(err, "Insert")
	}
	if !exists {
		return domain.ToolFailure(domain.CodeNotFound, fmt.Sprintf("Buyer id %d not found.", buyerID), nil)
	}

	schedule, booked, err := t.schedules.Add(ctx, domain.Schedule{
		BuyerID:      buyerID,
		Description:  desc,
		ScheduleTime: st,
		Priority:     priority,
	})
	switch {
	case errors.Is(err, domain.ErrForeignKey), errors.Is(err, domain.ErrIntegrity):
		return domain.ToolFailure(domain.CodePreconditionFailed, "Invalid reference (foreign key).",
			map[string]interface{}{"buyer_id": buyerID})
	case err != nil:
		logger.Error("Schedule insert failed", err, nil)
		return storageFailure(err, "Insert")
	}

	if booked {
		logger.Info("Requested time is already booked", port.Fields{"existing_id": schedule.ID})
		return domain.ToolFailure(domain.CodeTimeAlreadyBooked,
			fmt.Sprintf("The buyer is already booked at %s. Please choose another time.", st),
			map[string]interface{}{"existing_schedule": schedule, "requested_time": st})
	}

	logger.Info("Schedule added", port.Fields{"schedule_id": schedule.ID})
	return domain.ToolSuccess("Schedule added.", map[string]interface{}{"schedule": schedule})
}
