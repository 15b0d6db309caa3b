package usecases_port

import (
	"context"

	"github.com/jsamit27/ava/internal/core/domain"
)

type InitSessionUseCasePort interface {
	Execute(ctx context.Context, params domain.SessionParams) (*domain.InitSessionResult, error)
}
