package usecase

import (
	"context"
	"testing"

	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickupTools(t *testing.T) {
	ctx := context.Background()
	pickups := &fakePickupRepo{pickups: map[int64]domain.Pickup{5: {PickUpID: 5, Address: strp("1 Main St")}}}
	tools := NewPickupTools(pickups, testCars())

	res := tools.Retrieve(ctx, domain.Session{}, map[string]interface{}{"pick_up_id": 5})
	require.True(t, res.IsSuccess())
	assert.Equal(t, "Pickup retrieved.", res.Message)

	res = tools.Retrieve(ctx, domain.Session{}, map[string]interface{}{"pick_up_id": 6})
	assert.Equal(t, "Pickup not found.", res.Message)
	assert.Equal(t, int64(6), res.Data["pick_up_id"])

	res = tools.Update(ctx, domain.Session{}, map[string]interface{}{"pick_up_id": 5, "address": "2 Main St"})
	assert.Equal(t, "Pickup updated (1 fields).", res.Message)

	res = tools.Update(ctx, domain.Session{}, map[string]interface{}{"pick_up_id": 9, "address": "x"})
	assert.Equal(t, "Pickup id 9 not found.", res.Message)

	res = tools.Add(ctx, domain.Session{}, map[string]interface{}{"car_id": 42})
	assert.Equal(t, domain.CodePreconditionFailed, res.Code)
	assert.Equal(t, "Invalid car_id (no such car).", res.Message)

	res = tools.Add(ctx, domain.Session{}, map[string]interface{}{"car_id": "x"})
	assert.Equal(t, "car_id must be an integer.", res.Message)

	res = tools.Add(ctx, domain.Session{}, map[string]interface{}{"car_id": 1, "address": "3 Main St"})
	require.True(t, res.IsSuccess())
	assert.Equal(t, "Pickup added.", res.Message)
	assert.Equal(t, domain.FieldPatch{"car_id": int64(1), "address": "3 Main St"}, pickups.inserted[0])

	res = tools.ListAll(ctx, domain.Session{}, nil)
	assert.Equal(t, "Retrieved 1 pickup(s).", res.Message)
}

func TestScheduleTools_Availability(t *testing.T) {
	ctx := context.Background()
	repo := &fakeScheduleRepo{buyers: map[int64]bool{7: true, 8: true}, schedules: []domain.Schedule{
		{ID: 1, BuyerID: 7, ScheduleTime: "2025-01-01 10:00:00", Priority: "High"},
	}}
	tools := NewScheduleTools(repo)

	res := tools.Availability(ctx, domain.Session{BuyerID: "7"}, nil)
	assert.Equal(t, "Availability retrieved.", res.Message)

	res = tools.Availability(ctx, domain.Session{BuyerID: "8"}, nil)
	assert.Equal(t, "No schedules found.", res.Message)
	assert.Equal(t, []domain.Schedule{}, res.Data["schedules"])

	res = tools.Availability(ctx, domain.Session{BuyerID: "9"}, nil)
	assert.Equal(t, "Buyer id 9 not found.", res.Message)

	res = tools.Availability(ctx, domain.Session{BuyerID: "b-9"}, nil)
	assert.Equal(t, "buyer_id must be an integer.", res.Message)
}

func TestScheduleTools_Add(t *testing.T) {
	ctx := context.Background()
	repo := &fakeScheduleRepo{buyers: map[int64]bool{7: true}}
	tools := NewScheduleTools(repo)
	sess := domain.Session{BuyerID: "7"}

	res := tools.Add(ctx, sess, map[string]interface{}{"description": "Inspection", "schedule_time": "2025-03-01T10:30:00Z", "priority": "high"})
	require.True(t, res.IsSuccess(), res.Message)
	assert.Equal(t, "Schedule added.", res.Message)
	s := res.Data["schedule"].(domain.Schedule)
	assert.Equal(t, "2025-03-01 10:30:00", s.ScheduleTime)
	assert.Equal(t, "High", s.Priority)

	res = tools.Add(ctx, sess, map[string]interface{}{"description": "Again", "schedule_time": "2025-03-01 10:30"})
	assert.Equal(t, domain.CodeTimeAlreadyBooked, res.Code)
	assert.Equal(t, "The buyer is already booked at 2025-03-01 10:30:00. Please choose another time.", res.Message)
	assert.Equal(t, "2025-03-01 10:30:00", res.Data["requested_time"])

	res = tools.Add(ctx, sess, map[string]interface{}{"description": "Other", "schedule_time": "2025-03-02"})
	require.True(t, res.IsSuccess())
	assert.Equal(t, "Medium", res.Data["schedule"].(domain.Schedule).Priority)

	res = tools.Add(ctx, sess, map[string]interface{}{"schedule_time": "2025-03-02"})
	assert.Equal(t, "description is required.", res.Message)

	res = tools.Add(ctx, sess, map[string]interface{}{"description": "x", "schedule_time": "2025-03-03", "priority": "urgent"})
	assert.Equal(t, "priority must be one of [High, Low, Medium]", res.Message)

	res = tools.Add(ctx, sess, map[string]interface{}{"description": "x", "schedule_time": ""})
	assert.Equal(t, "schedule_time is invalid.", res.Message)

	res = tools.Add(ctx, sess, map[string]interface{}{})
	assert.Equal(t, "patch must be a non-empty object.", res.Message)

	res = tools.Add(ctx, domain.Session{BuyerID: "3"}, map[string]interface{}{"description": "x", "schedule_time": "2025-03-03"})
	assert.Equal(t, "Buyer id 3 not found.", res.Message)
}
