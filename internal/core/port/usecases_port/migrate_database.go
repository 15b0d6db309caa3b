package usecases_port

import (
	"context"

	"github.com/jsamit27/ava/internal/core/domain"
)

type MigrateDatabaseUseCasePort interface {
	Execute(ctx context.Context) (*domain.MigrationReport, error)
}
