package usecases_port

import (
	"context"

	"github.com/jsamit27/ava/internal/core/domain"
)

type GetSessionLogsUseCasePort interface {
	Execute(ctx context.Context, sessionID string) ([]domain.LogEntry, error)
}
