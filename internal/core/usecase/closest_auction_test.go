package usecase

import (
	"context"
	"testing"

	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func miles(m float64) float64 { return m * 1609.344 }

func testLocations() *fakeLocations {
	return &fakeLocations{byState: map[string][]string{
		"TX": {"1 Auction Rd, Dallas, TX, 75001"},
		"OK": {"2 Auction Rd, Tulsa, OK, 74101"},
		"NY": {"3 Auction Rd, Albany, NY, 12201"},
	}}
}

func TestClosestAuction_NeighborWithinThreshold(t *testing.T) {
	dist := &fakeDistance{meters: map[string]float64{
		"1 Auction Rd, Dallas, TX, 75001": miles(50),
		"2 Auction Rd, Tulsa, OK, 74101":  miles(30),
		"3 Auction Rd, Albany, NY, 12201": miles(10),
	}}
	f := NewClosestAuctionFinder(dist, testLocations(), 0, 0)

	best, err := f.Find(context.Background(), "500 Main St, Dallas", "tx")
	require.NoError(t, err)
	require.NotNil(t, best)

	assert.Equal(t, "2 Auction Rd, Tulsa, OK, 74101", best.Address)
	assert.Equal(t, domain.LayerNeighbor, best.Layer)
	assert.Equal(t, []string{"OK"}, best.NeighborsChecked)
	assert.False(t, best.ThresholdExceeded)
	assert.Equal(t, 30.0, best.DistanceMiles)
	assert.Equal(t, "csv/OK.csv", best.StateCSV)
	assert.Contains(t, dist.origins, "500 Main St, Dallas, TX")
}

func TestClosestAuction_NationalFallback(t *testing.T) {
	dist := &fakeDistance{meters: map[string]float64{
		"1 Auction Rd, Dallas, TX, 75001": miles(200),
		"2 Auction Rd, Tulsa, OK, 74101":  miles(150),
		"3 Auction Rd, Albany, NY, 12201": miles(120),
	}}
	f := NewClosestAuctionFinder(dist, testLocations(), 100, 25)

	best, err := f.Find(context.Background(), "500 Main St, Dallas, TX", "TX")
	require.NoError(t, err)
	require.NotNil(t, best)

	assert.Equal(t, domain.LayerNational, best.Layer)
	assert.Equal(t, "NY", best.State)
	assert.True(t, best.ThresholdExceeded)
	assert.NotContains(t, dist.origins, "500 Main St, Dallas, TX, TX")
}

func TestClosestAuction_InStateOverThresholdStillWinsWhenNearest(t *testing.T) {
	dist := &fakeDistance{meters: map[string]float64{
		"1 Auction Rd, Dallas, TX, 75001": miles(110),
		"3 Auction Rd, Albany, NY, 12201": miles(1500),
	}}
	best, err := NewClosestAuctionFinder(dist, testLocations(), 100, 25).Find(context.Background(), "Amarillo", "TX")
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, domain.LayerInState, best.Layer)
	assert.True(t, best.ThresholdExceeded)
}

func TestClosestAuction_Tool(t *testing.T) {
	f := NewClosestAuctionFinder(&fakeDistance{meters: map[string]float64{}}, testLocations(), 100, 25)

	res := f.Tool(context.Background(), domain.Session{}, map[string]interface{}{"user_address": "Dallas", "state": "Texas"})
	assert.Equal(t, domain.ToolStatusError, res.Status)
	assert.Equal(t, "No nearby locations found.", res.Message)

	res = f.Tool(context.Background(), domain.Session{}, map[string]interface{}{"state": "TX"})
	assert.Equal(t, domain.CodeInvalidInput, res.Code)

	f = NewClosestAuctionFinder(&fakeDistance{meters: map[string]float64{"1 Auction Rd, Dallas, TX, 75001": miles(5)}}, testLocations(), 100, 25)
	res = f.Tool(context.Background(), domain.Session{}, map[string]interface{}{"user_address": "Dallas", "state": "Texas"})
	require.True(t, res.IsSuccess())
	assert.Equal(t, domain.LayerInState, res.Data["layer"])
	assert.Equal(t, 5.0, res.Data["distance_miles"])
}
