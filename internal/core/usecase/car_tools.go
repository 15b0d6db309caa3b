package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
)

const maxAmbiguousCandidates = 5

// CarTools инструменты над таблицей cars
type CarTools struct {
	cars port.CarRepositoryPort
}

func NewCarTools(cars port.CarRepositoryPort) *CarTools {
	return &CarTools{cars: cars}
}

// Retrieve ищет машину по одному ключу в порядке car_id > vin > model > make > year
func (t *CarTools) Retrieve(ctx context.Context, _ domain.Session, args map[string]interface{}) domain.ToolResult {
	var provided []string
	for _, k := range domain.CarLookupPriority {
		if argProvided(args, string(k)) {
			provided = append(provided, string(k))
		}
	}
	if len(provided) == 0 {
		return domain.ToolFailure(domain.CodeInvalidInput, "Provide car_id, vin, model, make, or year.", nil)
	}

	key := domain.CarLookupKey(provided[0])
	ignored := provided[1:]
	if ignored == nil {
		ignored = []string{}
	}

	var value interface{}
	switch key {
	case domain.CarLookupByID, domain.CarLookupByYear:
		n, ok := argInt64(args[string(key)])
		if !ok {
			return domain.ToolFailure(domain.CodeInvalidInput, fmt.Sprintf("%s must be an integer.", key),
				map[string]interface{}{"received": args[string(key)]})
		}
		value = n
	default:
		s, _ := argText(args[string(key)])
		value = strings.TrimSpace(s)
	}

	meta := map[string]interface{}{
		"selected_key":   string(key),
		"selected_value": value,
		"ignored_keys":   ignored,
	}

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"tool": "car_retrieve", "selected_key": string(key)})

	if key == domain.CarLookupByID {
		car, err := t.cars.GetByID(ctx, value.(int64))
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ToolFailure(domain.CodeNotFound, "No matching car found.", meta)
		}
		if err != nil {
			logger.Error("Car lookup failed", err, nil)
			return storageFailure(err, "Lookup")
		}
		meta["car"] = *car
		return domain.ToolSuccess("Car retrieved.", meta)
	}

	cars, err := t.cars.FindByLookup(ctx, key, value)
	if err != nil {
		logger.Error("Car lookup failed", err, nil)
		return storageFailure(err, "Lookup")
	}
	if len(cars) == 0 {
		return domain.ToolFailure(domain.CodeNotFound, "No matching car found.", meta)
	}
	if len(cars) > 1 {
		limit := len(cars)
		if limit > maxAmbiguousCandidates {
			limit = maxAmbiguousCandidates
		}
		candidates := make([]domain.CarCandidate, 0, limit)
		for _, c := range cars[:limit] {
			candidates = append(candidates, c.Candidate())
		}
		meta["candidates"] = candidates
		return domain.ToolUnsure(domain.CodeAmbiguous, "Multiple cars match—refine with VIN or car_id.", meta)
	}

	meta["car"] = cars[0]
	return domain.ToolSuccess("Car retrieved.", meta)
}

// Update меняет разрешенные поля машины по car_id
func (t *CarTools) Update(ctx context.Context, _ domain.Session, args map[string]interface{}) domain.ToolResult {
	rest := withoutNil(args, "car_id")
	if len(rest) == 0 {
		return domain.ToolFailure(domain.CodeInvalidInput, "patch must be a non-empty object.", nil)
	}
	carID, ok := argInt64(args["car_id"])
	if !ok {
		return domain.ToolFailure(domain.CodeInvalidInput, "car_id must be an integer.",
			map[string]interface{}{"received": args["car_id"]})
	}

	patch, bad := buildPatch(rest, domain.CarWritableColumns)
	if bad != nil {
		return *bad
	}
	if len(patch) == 0 {
		return domain.ToolFailure(domain.CodeInvalidInput, "No allowed fields to update.",
			map[string]interface{}{"allowed_fields": sortedColumns(domain.CarWritableColumns)})
	}
	if vin, ok := patch["vin"].(string); ok {
		patch["vin"] = strings.TrimSpace(vin)
	}

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"tool": "car_update", "car_id": carID})

	updated, err := t.cars.UpdateFields(ctx, carID, patch)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.ToolFailure(domain.CodeNotFound, fmt.Sprintf("Car id %d not found.", carID), nil)
	case errors.Is(err, domain.ErrVINConflict):
		return domain.ToolFailure(domain.CodeConflictVIN, "VIN already exists.", map[string]interface{}{"vin": patch["vin"]})
	case errors.Is(err, domain.ErrForeignKey):
		return domain.ToolFailure(domain.CodePreconditionFailed, fmt.Sprintf("Integrity error: %v", err), nil)
	case err != nil:
		logger.Error("Car update failed", err, nil)
		return storageFailure(err, "Update")
	}

	msg := "No fields changed."
	if updated > 0 {
		msg = fmt.Sprintf("Car updated (%d fields).", updated)
	}
	logger.Info("Car updated", port.Fields{"updated_fields": updated})
	return domain.ToolSuccess(msg, map[string]interface{}{"car_id": carID, "updated_fields": updated})
}

// Add добавляет машину или обновляет существующую с тем же VIN
func (t *CarTools) Add(ctx context.Context, sess domain.Session, args map[string]interface{}) domain.ToolResult {
	patch, bad := buildPatch(args, domain.CarWritableColumns)
	if bad != nil {
		return *bad
	}
	if vin, ok := patch["vin"].(string); ok {
		if v := strings.TrimSpace(vin); v != "" {
			patch["vin"] = v
		} else {
			delete(patch, "vin")
		}
	}
	if _, ok := patch["lead_id"]; !ok {
		if leadID, ok := domain.NumericRef(sess.LeadID); ok {
			patch["lead_id"] = leadID
		}
	}

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"tool": "car_add"})

	res, err := t.cars.Upsert(ctx, patch)
	switch {
	case errors.Is(err, domain.ErrForeignKey):
		return domain.ToolFailure(domain.CodePreconditionFailed, "Invalid reference (foreign key).",
			map[string]interface{}{"lead_id": patch["lead_id"], "error": err.Error()})
	case errors.Is(err, domain.ErrVINConflict):
		return domain.ToolFailure(domain.CodePreconditionFailed, fmt.Sprintf("Integrity error: %v", err),
			map[string]interface{}{"error": err.Error()})
	case errors.Is(err, domain.ErrDBUnavailable), errors.Is(err, domain.ErrIntegrity):
		return storageFailure(err, "Insert/upsert")
	case err != nil:
		logger.Error("Car upsert failed", err, nil)
		return domain.ToolFailure(domain.CodeTxnFailed, fmt.Sprintf("Insert/upsert failed: %v", err),
			map[string]interface{}{"error": err.Error()})
	}

	if res.Created {
		logger.Info("Car added", port.Fields{"car_id": res.Car.ID})
		return domain.ToolSuccess("Car added.", map[string]interface{}{"car": res.Car})
	}

	msg := "No fields changed."
	if res.Changed > 0 {
		msg = "Car upserted (existing VIN updated)."
	}
	logger.Info("Car upserted by VIN", port.Fields{"car_id": res.Car.ID, "updated_fields": res.Changed})
	return domain.ToolSuccess(msg, map[string]interface{}{"car": res.Car, "updated_fields": res.Changed})
}

func (t *CarTools) ListAll(ctx context.Context, _ domain.Session, _ map[string]interface{}) domain.ToolResult {
	cars, err := t.cars.ListAll(ctx)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to list cars", err, port.Fields{"tool": "get_all_cars"})
		return storageFailure(err, "Query")
	}
	if cars == nil {
		cars = []domain.Car{}
	}
	return domain.ToolSuccess(fmt.Sprintf("Retrieved %d car(s).", len(cars)),
		map[string]interface{}{"cars": cars, "count": len(cars)})
}
