package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
)

const scheduleColumns = "id, buyer_id, description, schedule_time, COALESCE(priority, 'Medium')"

// PostgresScheduleRepository - реализация ScheduleRepositoryPort.
type PostgresScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresScheduleRepository(pool *pgxpool.Pool) (*PostgresScheduleRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresScheduleRepository{pool: pool}, nil
}

func scanSchedule(row pgx.Row) (domain.Schedule, error) {
	var s domain.Schedule
	err := row.Scan(&s.ID, &s.BuyerID, &s.Description, &s.ScheduleTime, &s.Priority)
	return s, err
}

func (r *PostgresScheduleRepository) BuyerExists(ctx context.Context, buyerID int64) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM buyers WHERE id = $1)", buyerID).Scan(&exists); err != nil {
		return false, classifyError(err, "check buyer")
	}
	return exists, nil
}

// ListByBuyer записи покупателя по возрастанию времени
func (r *PostgresScheduleRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]domain.Schedule, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresScheduleRepository",
		"method":    "ListByBuyer",
		"buyer_id":  buyerID,
	})

	query := "SELECT " + scheduleColumns + " FROM buyer_schedule WHERE buyer_id = $1 ORDER BY schedule_time ASC, id ASC"
	rows, err := r.pool.Query(ctx, query, buyerID)
	if err != nil {
		repoLogger.Error("Failed to query schedule", err, port.Fields{"query": query})
		return nil, classifyError(err, "query schedule")
	}
	defer rows.Close()

	schedules := make([]domain.Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during schedule iteration: %w", err)
	}
	return schedules, nil
}

// Add проверяет занятость времени и вставляет запись в одной транзакции
func (r *PostgresScheduleRepository) Add(ctx context.Context, s domain.Schedule) (domain.Schedule, bool, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresScheduleRepository",
		"method":    "Add",
		"buyer_id":  s.BuyerID,
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Schedule{}, false, classifyError(err, "begin transaction")
	}
	defer tx.Rollback(ctx)

	// сериализуем вставки для одного покупателя
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext('buyer_schedule'), $1::int)", s.BuyerID); err != nil {
		return domain.Schedule{}, false, classifyError(err, "lock schedule")
	}

	existing, err := scanSchedule(tx.QueryRow(ctx,
		"SELECT "+scheduleColumns+" FROM buyer_schedule WHERE buyer_id = $1 AND schedule_time = $2 LIMIT 1",
		s.BuyerID, s.ScheduleTime))
	switch {
	case err == nil:
		repoLogger.Debug("Schedule slot already booked", port.Fields{"existing_id": existing.ID})
		return existing, true, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return domain.Schedule{}, false, classifyError(err, "check schedule slot")
	}

	created, err := scanSchedule(tx.QueryRow(ctx,
		`INSERT INTO buyer_schedule (buyer_id, description, schedule_time, priority)
		 VALUES ($1, $2, $3, $4) RETURNING `+scheduleColumns,
		s.BuyerID, s.Description, s.ScheduleTime, s.Priority))
	if err != nil {
		repoLogger.Error("Failed to insert schedule", err, nil)
		return domain.Schedule{}, false, classifyError(err, "insert schedule")
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Schedule{}, false, classifyError(err, "commit transaction")
	}
	repoLogger.Info("Schedule added", port.Fields{"schedule_id": created.ID})
	return created, false, nil
}
