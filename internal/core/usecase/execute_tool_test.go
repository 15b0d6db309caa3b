package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestToolSet(sms *fakeSMS, pub *fakePublisher) ToolSet {
	cars := testCars()
	return ToolSet{
		Cars:      NewCarTools(cars),
		Pickups:   NewPickupTools(&fakePickupRepo{pickups: map[int64]domain.Pickup{}}, cars),
		Schedules: NewScheduleTools(&fakeScheduleRepo{buyers: map[int64]bool{}}),
		Closest:   NewClosestAuctionFinder(&fakeDistance{}, &fakeLocations{}, 100, 25),
		Escalator: NewEscalator(sms, pub),
	}
}

func TestExecuteTool_Dispatch(t *testing.T) {
	pub := &fakePublisher{}
	metrics := &fakeMetrics{}
	uc := NewExecuteToolUseCase(newTestToolSet(&fakeSMS{}, pub).Handlers(), pub, metrics)
	sess := domain.Session{ID: "s1", LeadID: "3"}

	res := uc.Execute(context.Background(), sess, domain.ToolCall{Name: "get_all_cars"})
	require.True(t, res.IsSuccess())

	res = uc.Execute(context.Background(), sess, domain.ToolCall{Name: "fly"})
	assert.Equal(t, domain.CodeUnknownTool, res.Code)
	assert.Equal(t, "Unknown tool 'fly'.", res.Message)

	assert.Equal(t, []string{"get_all_cars:success", "fly:error"}, metrics.tools)
	require.Len(t, pub.tools, 2)
	assert.Equal(t, "s1", pub.tools[0].SessionID)
	assert.Equal(t, domain.CodeUnknownTool, pub.tools[1].Code)
}

func TestExecuteTool_OfferIsForbidden(t *testing.T) {
	uc := NewExecuteToolUseCase(newTestToolSet(&fakeSMS{}, &fakePublisher{}).Handlers(), nil, nil)

	for _, name := range []string{"car_add", "car_update"} {
		res := uc.Execute(context.Background(), domain.Session{}, domain.ToolCall{
			Name: name,
			Args: map[string]interface{}{"car_id": 1, "buyer_offer_cents": 500000},
		})
		assert.Equal(t, domain.CodeForbidden, res.Code, name)
		assert.Equal(t, "Ava cannot set buyer_offer_cents. Only GMTV employees can set the company's offer.", res.Message)
	}
}

func TestHandlers_CoverCatalog(t *testing.T) {
	h := newTestToolSet(&fakeSMS{}, &fakePublisher{}).Handlers()
	assert.Len(t, h, 12)
}

func TestEscalator(t *testing.T) {
	ctx := context.Background()
	sms := &fakeSMS{}
	pub := &fakePublisher{}
	e := NewEscalator(sms, pub)

	res := e.Tool(ctx, domain.Session{ID: "s", EscalationPhone: "+15550001111"}, map[string]interface{}{"message_text": "Customer is upset"})
	require.True(t, res.IsSuccess())
	assert.Equal(t, "Escalation SMS sent.", res.Message)
	assert.Equal(t, "+15550001111", sms.to)
	require.Len(t, pub.escalations, 1)
	assert.True(t, pub.escalations[0].Delivered)

	sms.err = errors.New("rate limited")
	res = e.Tool(ctx, domain.Session{EscalationPhone: "+1"}, map[string]interface{}{"message_text": "again"})
	assert.Equal(t, domain.ToolStatusError, res.Status)
	assert.Equal(t, "Failed to send: rate limited", res.Message)
	assert.False(t, pub.escalations[1].Delivered)

	res = e.Tool(ctx, domain.Session{}, map[string]interface{}{"message_text": "no phone"})
	assert.Equal(t, "Failed to send: "+domain.ErrEscalationTarget.Error(), res.Message)

	res = e.Tool(ctx, domain.Session{EscalationPhone: "+1"}, map[string]interface{}{})
	assert.Equal(t, domain.CodeInvalidInput, res.Code)
}
