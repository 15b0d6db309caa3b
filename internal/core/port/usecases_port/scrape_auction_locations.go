package usecases_port

import (
	"context"

	"github.com/jsamit27/ava/internal/core/domain"
)

type ScrapeAuctionLocationsUseCasePort interface {
	Execute(ctx context.Context) (*domain.ScrapeReport, error)
}
