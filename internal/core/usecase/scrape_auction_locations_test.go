package usecase

import (
	"context"
	"testing"

	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	locations []domain.AuctionLocation
}

func (f *fakeFetcher) FetchLocations(context.Context) ([]domain.AuctionLocation, int, error) {
	return f.locations, 3, nil
}

type fakeWriter struct {
	all     []domain.AuctionLocation
	byState map[string][]domain.AuctionLocation
	counts  map[string]int
}

func (w *fakeWriter) WriteAll(_ context.Context, l []domain.AuctionLocation) error {
	w.all = l
	return nil
}

func (w *fakeWriter) WriteByState(_ context.Context, m map[string][]domain.AuctionLocation) error {
	w.byState = m
	return nil
}

func (w *fakeWriter) WriteSummary(_ context.Context, c map[string]int) error {
	w.counts = c
	return nil
}

func TestScrapeAuctionLocations(t *testing.T) {
	fetcher := &fakeFetcher{locations: []domain.AuctionLocation{
		{Name: "Manheim Dallas", City: "Dallas", State: "TX"},
		{Name: "Manheim Dallas", City: "Dallas", State: "Texas"},
		{Name: "Manheim Fort Worth", City: "Fort Worth", State: "TX"},
		{Name: "Manheim Online", City: "", State: ""},
	}}
	writer := &fakeWriter{}

	report, err := NewScrapeAuctionLocationsUseCase(fetcher, writer).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.PagesVisited)
	assert.Equal(t, 4, report.LocationsFound)
	assert.Equal(t, 3, report.Unique)
	assert.Equal(t, map[string]int{"TX": 2}, writer.counts)
	assert.Len(t, writer.byState["TX"], 2)
	assert.Len(t, writer.all, 3)
}
