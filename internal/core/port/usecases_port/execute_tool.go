package usecases_port

import (
	"context"

	"github.com/jsamit27/ava/internal/core/domain"
)

type ExecuteToolUseCasePort interface {
	// Ошибки инструментов возвращаются внутри ToolResult
	Execute(ctx context.Context, session domain.Session, call domain.ToolCall) domain.ToolResult
}
