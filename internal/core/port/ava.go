package port

import (
	"context"

	"github.com/jsamit27/ava/internal/core/domain"
)

// AvaChatPort клиент внешнего сервиса Ava
type AvaChatPort interface {
	Login(ctx context.Context, user, password string) (token string, err error)
	CreateSession(ctx context.Context, token, user string) (sessionID string, err error)
	// Ask отправляет сообщение и собирает потоковый ответ в одну строку
	Ask(ctx context.Context, conv domain.AvaConversation, message string) (string, error)
}
