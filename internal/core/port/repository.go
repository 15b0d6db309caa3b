package port

import (
	"context"

	"github.com/jsamit27/ava/internal/core/domain"
)

// CarRepositoryPort доступ к таблице cars
type CarRepositoryPort interface {
	GetByID(ctx context.Context, id int64) (*domain.Car, error)
	FindByLookup(ctx context.Context, key domain.CarLookupKey, value interface{}) ([]domain.Car, error)
	ListAll(ctx context.Context) ([]domain.Car, error)
	// UpdateFields возвращает число обновленных полей, domain.ErrNotFound если строки нет
	UpdateFields(ctx context.Context, id int64, patch domain.FieldPatch) (int, error)
	// Upsert вставляет машину или обновляет существующую по VIN
	Upsert(ctx context.Context, fields domain.FieldPatch) (UpsertResult, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type UpsertResult struct {
	Car     domain.Car
	Created bool
	Changed int
}

// PickupRepositoryPort доступ к таблице pickup
type PickupRepositoryPort interface {
	GetByID(ctx context.Context, id int64) (*domain.Pickup, error)
	ListAll(ctx context.Context) ([]domain.Pickup, error)
	UpdateFields(ctx context.Context, id int64, patch domain.FieldPatch) (int, error)
	Insert(ctx context.Context, fields domain.FieldPatch) (domain.Pickup, error)
}

// ScheduleRepositoryPort доступ к buyers и buyer_schedule
type ScheduleRepositoryPort interface {
	BuyerExists(ctx context.Context, buyerID int64) (bool, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]domain.Schedule, error)
	// Add вставляет запись, возвращает booked=true если время у покупателя уже занято
	Add(ctx context.Context, s domain.Schedule) (created domain.Schedule, booked bool, err error)
}
