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

const pickupColumns = "pick_up_id, car_id, address, contact_phone, pick_up_info, created_at, dropoff_time"

// PostgresPickupRepository - реализация PickupRepositoryPort.
type PostgresPickupRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPickupRepository(pool *pgxpool.Pool) (*PostgresPickupRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresPickupRepository{pool: pool}, nil
}

func scanPickup(row pgx.Row) (domain.Pickup, error) {
	var p domain.Pickup
	err := row.Scan(&p.PickUpID, &p.CarID, &p.Address, &p.ContactPhone, &p.PickUpInfo, &p.CreatedAt, &p.DropoffTime)
	return p, err
}

func (r *PostgresPickupRepository) GetByID(ctx context.Context, id int64) (*domain.Pickup, error) {
	query := "SELECT " + pickupColumns + " FROM pickup WHERE pick_up_id = $1"
	p, err := scanPickup(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		contextkeys.LoggerFromContext(ctx).Error("Failed to get pickup", err, port.Fields{
			"component":  "PostgresPickupRepository",
			"pick_up_id": id,
		})
		return nil, classifyError(err, "get pickup")
	}
	return &p, nil
}

func (r *PostgresPickupRepository) ListAll(ctx context.Context) ([]domain.Pickup, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+pickupColumns+" FROM pickup ORDER BY pick_up_id")
	if err != nil {
		return nil, classifyError(err, "list pickups")
	}
	defer rows.Close()

	pickups := make([]domain.Pickup, 0)
	for rows.Next() {
		p, err := scanPickup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pickup row: %w", err)
		}
		pickups = append(pickups, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during pickups iteration: %w", err)
	}
	return pickups, nil
}

func (r *PostgresPickupRepository) UpdateFields(ctx context.Context, id int64, patch domain.FieldPatch) (int, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "PostgresPickupRepository",
		"method":     "UpdateFields",
		"pick_up_id": id,
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, classifyError(err, "begin transaction")
	}
	defer tx.Rollback(ctx)

	var found int
	if err := tx.QueryRow(ctx, "SELECT 1 FROM pickup WHERE pick_up_id = $1 FOR UPDATE", id).Scan(&found); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, classifyError(err, "lock pickup")
	}

	if len(patch) > 0 {
		query, args := buildUpdate("pickup", "pick_up_id", id, patch)
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			repoLogger.Error("Failed to update pickup", err, port.Fields{"query": query})
			return 0, classifyError(err, "update pickup")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, classifyError(err, "commit transaction")
	}
	repoLogger.Debug("Pickup updated", port.Fields{"updated_fields": len(patch)})
	return len(patch), nil
}

// Insert создает запись с временным отрицательным pick_up_id
func (r *PostgresPickupRepository) Insert(ctx context.Context, fields domain.FieldPatch) (domain.Pickup, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresPickupRepository",
		"method":    "Insert",
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Pickup{}, classifyError(err, "begin transaction")
	}
	defer tx.Rollback(ctx)

	tempID, err := nextTempID(ctx, tx, "pickup", "pick_up_id")
	if err != nil {
		repoLogger.Error("Failed to allocate temporary id", err, nil)
		return domain.Pickup{}, classifyError(err, "allocate pickup id")
	}

	query, args := buildInsert("pickup", "pick_up_id", tempID, fields, pickupColumns)
	p, err := scanPickup(tx.QueryRow(ctx, query, args...))
	if err != nil {
		repoLogger.Error("Failed to insert pickup", err, port.Fields{"query": query})
		return domain.Pickup{}, classifyError(err, "insert pickup")
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Pickup{}, classifyError(err, "commit transaction")
	}
	repoLogger.Info("Pickup added", port.Fields{"pick_up_id": p.PickUpID})
	return p, nil
}
