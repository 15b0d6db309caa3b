package port

import (
	"context"

	"github.com/jsamit27/ava/internal/core/domain"
)

// SMSSenderPort отправка SMS (RingCentral)
type SMSSenderPort interface {
	SendSMS(ctx context.Context, to, text string) error
}

// DistanceMatrixPort ближайший пункт из списка адресов по дороге
type DistanceMatrixPort interface {
	// Closest возвращает nil без ошибки, если ни один адрес не доступен
	Closest(ctx context.Context, origin string, destinations []string) (*domain.DistanceMatch, error)
}

// AuctionLocationsPort адреса площадок по штатам
type AuctionLocationsPort interface {
	// States коды штатов, для которых есть файл, по алфавиту
	States(ctx context.Context) ([]string, error)
	// Addresses до limit адресов штата, domain.ErrStateCSVMissing если файла нет
	Addresses(ctx context.Context, state string, limit int) ([]string, error)
	Source(state string) string
}

// EventPublisherPort аудит событий в брокер
type EventPublisherPort interface {
	PublishToolExecuted(ctx context.Context, ev domain.ToolExecutedEvent) error
	PublishEscalationRequested(ctx context.Context, ev domain.EscalationRequestedEvent) error
}

// MetricsPort счетчики для prometheus
type MetricsPort interface {
	ObserveTool(name string, status domain.ToolStatus, seconds float64)
	ObservePlan(action string)
	ObserveAva(operation string, err error, seconds float64)
}
