package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
)

// PickupTools инструменты над таблицей pickup
type PickupTools struct {
	pickups port.PickupRepositoryPort
	cars    port.CarRepositoryPort
}

func NewPickupTools(pickups port.PickupRepositoryPort, cars port.CarRepositoryPort) *PickupTools {
	return &PickupTools{pickups: pickups, cars: cars}
}

func (t *PickupTools) Retrieve(ctx context.Context, _ domain.Session, args map[string]interface{}) domain.ToolResult {
	id, ok := argInt64(args["pick_up_id"])
	if !ok {
		return domain.ToolFailure(domain.CodeInvalidInput, "pick_up_id must be an integer.",
			map[string]interface{}{"received": args["pick_up_id"]})
	}

	pickup, err := t.pickups.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ToolFailure(domain.CodeNotFound, "Pickup not found.", map[string]interface{}{"pick_up_id": id})
	}
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Pickup lookup failed", err, port.Fields{"tool": "pickup_retrieve", "pick_up_id": id})
		return storageFailure(err, "Lookup")
	}
	return domain.ToolSuccess("Pickup retrieved.", map[string]interface{}{"pickup": pickup})
}

func (t *PickupTools) Update(ctx context.Context, _ domain.Session, args map[string]interface{}) domain.ToolResult {
	rest := withoutNil(args, "pick_up_id")
	if len(rest) == 0 {
		return domain.ToolFailure(domain.CodeInvalidInput, "patch must be a non-empty object.", nil)
	}
	id, ok := argInt64(args["pick_up_id"])
	if !ok {
		return domain.ToolFailure(domain.CodeInvalidInput, "pick_up_id must be an integer.",
			map[string]interface{}{"received": args["pick_up_id"]})
	}

	patch, bad := buildPatch(rest, domain.PickupWritableColumns)
	if bad != nil {
		return *bad
	}
	if len(patch) == 0 {
		return domain.ToolFailure(domain.CodeInvalidInput, "No allowed fields to update.",
			map[string]interface{}{"allowed_fields": sortedColumns(domain.PickupWritableColumns)})
	}

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"tool": "pickup_update", "pick_up_id": id})

	updated, err := t.pickups.UpdateFields(ctx, id, patch)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.ToolFailure(domain.CodeNotFound, fmt.Sprintf("Pickup id %d not found.", id), nil)
	case errors.Is(err, domain.ErrForeignKey):
		return domain.ToolFailure(domain.CodePreconditionFailed, "Invalid reference (foreign key).",
			map[string]interface{}{"car_id": patch["car_id"]})
	case err != nil:
		logger.Error("Pickup update failed", err, nil)
		return storageFailure(err, "Update")
	}

	msg := "No fields changed."
	if updated > 0 {
		msg = fmt.Sprintf("Pickup updated (%d fields).", updated)
	}
	logger.Info("Pickup updated", port.Fields{"updated_fields": updated})
	return domain.ToolSuccess(msg, map[string]interface{}{"pick_up_id": id, "updated_fields": updated})
}

// Add создает забор машины. car_id, если передан, должен существовать.
func (t *PickupTools) Add(ctx context.Context, _ domain.Session, args map[string]interface{}) domain.ToolResult {
	if raw, ok := args["car_id"]; ok && raw != nil {
		carID, ok := argInt64(raw)
		if !ok {
			return domain.ToolFailure(domain.CodeInvalidInput, "car_id must be an integer.",
				map[string]interface{}{"received": raw})
		}
		exists, err := t.cars.Exists(ctx, carID)
		if err != nil {
			return storageFailure(err, "Insert")
		}
		if !exists {
			return domain.ToolFailure(domain.CodePreconditionFailed, "Invalid car_id (no such car).",
				map[string]interface{}{"car_id": carID})
		}
	}

	patch, bad := buildPatch(args, domain.PickupWritableColumns)
	if bad != nil {
		return *bad
	}

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"tool": "pickup_add"})

	pickup, err := t.pickups.Insert(ctx, patch)
	switch {
	case errors.Is(err, domain.ErrForeignKey):
		return domain.ToolFailure(domain.CodePreconditionFailed, "Invalid reference (foreign key).",
			map[string]interface{}{"car_id": patch["car_id"]})
	case err != nil:
		logger.Error("Pickup insert failed", err, nil)
		return storageFailure(err, "Insert")
	}

	logger.Info("Pickup added", port.Fields{"pick_up_id": pickup.PickUpID})
	return domain.ToolSuccess("Pickup added.", map[string]interface{}{"pickup": pickup})
}

func (t *PickupTools) ListAll(ctx context.Context, _ domain.Session, _ map[string]interface{}) domain.ToolResult {
	pickups, err := t.pickups.ListAll(ctx)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to list pickups", err, port.Fields{"tool": "get_all_pickups"})
		return storageFailure(err, "Query")
	}
	if pickups == nil {
		pickups = []domain.Pickup{}
	}
	return domain.ToolSuccess(fmt.Sprintf("Retrieved %d pickup(s).", len(pickups)),
		map[string]interface{}{"pickups": pickups, "count": len(pickups)})
}
