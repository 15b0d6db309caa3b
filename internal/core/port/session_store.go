package port

import (
	"context"

	"github.com/jsamit27/ava/internal/core/domain"
)

// SessionStorePort хранение сессий и их журналов событий
type SessionStorePort interface {
	Save(ctx context.Context, s domain.Session) error
	// Get возвращает domain.ErrSessionNotFound для неизвестного id
	Get(ctx context.Context, id string) (*domain.Session, error)
	// FindByLead nil без ошибки, если у лида нет сессии
	FindByLead(ctx context.Context, leadID string) (*domain.Session, error)
	AppendLog(ctx context.Context, id string, entry domain.LogEntry) error
	Logs(ctx context.Context, id string) ([]domain.LogEntry, error)
}

// SessionTokenServicePort выдача и проверка подписанных токенов сессии
type SessionTokenServicePort interface {
	GenerateToken(sessionID, leadID string) (string, error)
	ValidateToken(token string) (sessionID string, err error)
}
