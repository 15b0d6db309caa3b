package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
)

type ScrapeAuctionLocationsUseCase struct {
	fetcher port.LocationFetcherPort
	writer  port.LocationWriterPort
}

func NewScrapeAuctionLocationsUseCase(fetcher port.LocationFetcherPort, writer port.LocationWriterPort) *ScrapeAuctionLocationsUseCase {
	return &ScrapeAuctionLocationsUseCase{fetcher: fetcher, writer: writer}
}

func (uc *ScrapeAuctionLocationsUseCase) Execute(ctx context.Context) (*domain.ScrapeReport, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "ScrapeAuctionLocations"})
	ucLogger.Info("Use case started", nil)

	found, pages, err := uc.fetcher.FetchLocations(ctx)
	if err != nil {
		ucLogger.Error("Failed to fetch locations", err, nil)
		return nil, fmt.Errorf("failed to fetch locations: %w", err)
	}

	unique := DedupeLocations(found)
	byState := make(map[string][]domain.AuctionLocation)
	counts := make(map[string]int)
	for _, loc := range unique {
		if loc.State == "" {
			continue
		}
		byState[loc.State] = append(byState[loc.State], loc)
		counts[loc.State]++
	}

	if err := uc.writer.WriteAll(ctx, unique); err != nil {
		return nil, fmt.Errorf("failed to write locations: %w", err)
	}
	if err := uc.writer.WriteByState(ctx, byState); err != nil {
		return nil, fmt.Errorf("failed to write per-state files: %w", err)
	}
	if err := uc.writer.WriteSummary(ctx, counts); err != nil {
		return nil, fmt.Errorf("failed to write state summary: %w", err)
	}

	report := &domain.ScrapeReport{
		PagesVisited:   pages,
		LocationsFound: len(found),
		Unique:         len(unique),
		ByState:        counts,
	}
	ucLogger.Info("Use case finished successfully", port.Fields{
		"pages":  pages,
		"found":  len(found),
		"unique": len(unique),
		"states": len(counts),
	})
	return report, nil
}

// DedupeLocations нормализует штат и убирает повторы по (name, city, state)
func DedupeLocations(in []domain.AuctionLocation) []domain.AuctionLocation {
	seen := make(map[string]bool, len(in))
	out := make([]domain.AuctionLocation, 0, len(in))
	for _, loc := range in {
		if code := domain.NormalizeStateCode(loc.State); code != "" {
			loc.State = code
		} else {
			loc.State = strings.ToUpper(strings.TrimSpace(loc.State))
		}
		key := strings.ToLower(strings.TrimSpace(loc.Name)) + "|" +
			strings.ToLower(strings.TrimSpace(loc.City)) + "|" + loc.State
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, loc)
	}
	return out
}
