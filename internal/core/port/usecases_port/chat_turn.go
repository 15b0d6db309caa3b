package usecases_port

import "context"

type ChatTurnUseCasePort interface {
	// Возвращает текст ответа пользователю
	Execute(ctx context.Context, sessionID, message string) (string, error)
}
