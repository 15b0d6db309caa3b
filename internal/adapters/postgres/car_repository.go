package postgres_adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
)

const carColumns = `id, vin, year, make, model, trim, mileage, interior_condition, exterior_condition,
	seller_ask_cents, buyer_offer_cents, created_at, lead_id`

// PostgresCarRepository - реализация CarRepositoryPort для PostgreSQL.
type PostgresCarRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCarRepository(pool *pgxpool.Pool) (*PostgresCarRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresCarRepository{pool: pool}, nil
}

func scanCar(row pgx.Row) (domain.Car, error) {
	var c domain.Car
	err := row.Scan(
		&c.ID, &c.VIN, &c.Year, &c.Make, &c.Model, &c.Trim, &c.Mileage,
		&c.InteriorCondition, &c.ExteriorCondition, &c.SellerAskCents, &c.BuyerOfferCents,
		&c.CreatedAt, &c.LeadID,
	)
	return c, err
}

func collectCars(rows pgx.Rows) ([]domain.Car, error) {
	defer rows.Close()

	cars := make([]domain.Car, 0)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car row: %w", err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during cars iteration: %w", err)
	}
	return cars, nil
}

// GetByID возвращает domain.ErrNotFound, если машины нет
func (r *PostgresCarRepository) GetByID(ctx context.Context, id int64) (*domain.Car, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresCarRepository",
		"method":    "GetByID",
		"car_id":    id,
	})

	query := "SELECT " + carColumns + " FROM cars WHERE id = $1"
	car, err := scanCar(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Debug("Car not found.", nil)
			return nil, domain.ErrNotFound
		}
		repoLogger.Error("Failed to get car", err, nil)
		return nil, classifyError(err, "get car")
	}
	return &car, nil
}

// FindByLookup ищет по VIN и году точно, по модели и марке подстрокой без учета регистра
func (r *PostgresCarRepository) FindByLookup(ctx context.Context, key domain.CarLookupKey, value interface{}) ([]domain.Car, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "PostgresCarRepository",
		"method":     "FindByLookup",
		"lookup_key": string(key),
	})

	var where string
	arg := value
	switch key {
	case domain.CarLookupByID:
		where = "id = $1"
	case domain.CarLookupByVIN:
		where = "vin = $1"
	case domain.CarLookupByYear:
		where = "year = $1"
	case domain.CarLookupByModel, domain.CarLookupByMake:
		where = fmt.Sprintf("LOWER(%s) LIKE $1", string(key))
		arg = "%" + strings.ToLower(fmt.Sprint(value)) + "%"
	default:
		return nil, fmt.Errorf("unsupported car lookup key %q", key)
	}

	query := "SELECT " + carColumns + " FROM cars WHERE " + where + " ORDER BY id"
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		repoLogger.Error("Failed to query cars", err, port.Fields{"query": query})
		return nil, classifyError(err, "query cars")
	}

	cars, err := collectCars(rows)
	if err != nil {
		repoLogger.Error("Failed to read cars", err, nil)
		return nil, err
	}
	repoLogger.Debug("Cars found", port.Fields{"count": len(cars)})
	return cars, nil
}

func (r *PostgresCarRepository) ListAll(ctx context.Context) ([]domain.Car, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresCarRepository",
		"method":    "ListAll",
	})

	rows, err := r.pool.Query(ctx, "SELECT "+carColumns+" FROM cars ORDER BY id")
	if err != nil {
		repoLogger.Error("Failed to query cars", err, nil)
		return nil, classifyError(err, "list cars")
	}
	return collectCars(rows)
}

func (r *PostgresCarRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM cars WHERE id = $1)", id).Scan(&exists); err != nil {
		return false, classifyError(err, "check car")
	}
	return exists, nil
}

// UpdateFields меняет переданные колонки одной транзакцией
func (r *PostgresCarRepository) UpdateFields(ctx context.Context, id int64, patch domain.FieldPatch) (int, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresCarRepository",
		"method":    "UpdateFields",
		"car_id":    id,
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return 0, classifyError(err, "begin transaction")
	}
	defer tx.Rollback(ctx)

	var found int
	if err := tx.QueryRow(ctx, "SELECT 1 FROM cars WHERE id = $1 FOR UPDATE", id).Scan(&found); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, classifyError(err, "lock car")
	}

	if len(patch) > 0 {
		query, args := buildUpdate("cars", "id", id, patch)
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			repoLogger.Error("Failed to update car", err, port.Fields{"query": query})
			return 0, classifyError(err, "update car")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return 0, classifyError(err, "commit transaction")
	}

	repoLogger.Debug("Car updated", port.Fields{"updated_fields": len(patch)})
	return len(patch), nil
}

// Upsert обновляет машину с тем же VIN либо вставляет новую с временным отрицательным id
func (r *PostgresCarRepository) Upsert(ctx context.Context, fields domain.FieldPatch) (port.UpsertResult, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresCarRepository",
		"method":    "Upsert",
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return port.UpsertResult{}, classifyError(err, "begin transaction")
	}
	defer tx.Rollback(ctx)

	var res port.UpsertResult
	existingID, found, err := r.findIDByVIN(ctx, tx, fields["vin"])
	if err != nil {
		repoLogger.Error("Failed to look up car by VIN", err, nil)
		return port.UpsertResult{}, classifyError(err, "look up car by VIN")
	}

	if found {
		// VIN тоже считается обновленным полем
		patch := fields
		if len(patch) > 0 {
			query, args := buildUpdate("cars", "id", existingID, patch)
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				repoLogger.Error("Failed to update car by VIN", err, port.Fields{"query": query})
				return port.UpsertResult{}, classifyError(err, "update car")
			}
		}
		res.Changed = len(patch)
		res.Car, err = scanCar(tx.QueryRow(ctx, "SELECT "+carColumns+" FROM cars WHERE id = $1", existingID))
		if err != nil {
			return port.UpsertResult{}, classifyError(err, "reload car")
		}
	} else {
		tempID, err := nextTempID(ctx, tx, "cars", "id")
		if err != nil {
			repoLogger.Error("Failed to allocate temporary id", err, nil)
			return port.UpsertResult{}, classifyError(err, "allocate car id")
		}
		query, args := buildInsert("cars", "id", tempID, fields, carColumns)
		res.Car, err = scanCar(tx.QueryRow(ctx, query, args...))
		if err != nil {
			repoLogger.Error("Failed to insert car", err, port.Fields{"query": query})
			return port.UpsertResult{}, classifyError(err, "insert car")
		}
		res.Created = true
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return port.UpsertResult{}, classifyError(err, "commit transaction")
	}

	repoLogger.Info("Car upserted", port.Fields{"car_id": res.Car.ID, "created": res.Created})
	return res, nil
}

func (r *PostgresCarRepository) findIDByVIN(ctx context.Context, tx pgx.Tx, vin interface{}) (int64, bool, error) {
	s, ok := vin.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return 0, false, nil
	}

	var id int64
	err := tx.QueryRow(ctx, "SELECT id FROM cars WHERE vin = $1 FOR UPDATE", s).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}
