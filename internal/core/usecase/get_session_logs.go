package usecase

import (
	"context"

	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
)

type GetSessionLogsUseCase struct {
	store port.SessionStorePort
	limit int
}

// limit сколько последних записей отдавать
func NewGetSessionLogsUseCase(store port.SessionStorePort, limit int) *GetSessionLogsUseCase {
	if limit <= 0 {
		limit = 10
	}
	return &GetSessionLogsUseCase{store: store, limit: limit}
}

func (uc *GetSessionLogsUseCase) Execute(ctx context.Context, sessionID string) ([]domain.LogEntry, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "GetSessionLogs", "session_id": shortID(sessionID)})

	if _, err := uc.store.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	logs, err := uc.store.Logs(ctx, sessionID)
	if err != nil {
		ucLogger.Error("Failed to read session logs", err, nil)
		return nil, err
	}
	if len(logs) > uc.limit {
		logs = logs[len(logs)-uc.limit:]
	}
	if logs == nil {
		logs = []domain.LogEntry{}
	}
	return logs, nil
}
