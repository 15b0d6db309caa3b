package postgres_adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
)

// PostgresMigrationTarget принимает таблицы, перенесенные из SQLite
type PostgresMigrationTarget struct {
	pool *pgxpool.Pool
}

func NewPostgresMigrationTarget(pool *pgxpool.Pool) (*PostgresMigrationTarget, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresMigrationTarget{pool: pool}, nil
}

func (t *PostgresMigrationTarget) DropTables(ctx context.Context, tables []domain.TableSpec) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "PostgresMigrationTarget"})

	for _, table := range tables {
		stmt := "DROP TABLE IF EXISTS " + pgx.Identifier{table.Name}.Sanitize() + " CASCADE"
		if _, err := t.pool.Exec(ctx, stmt); err != nil {
			return classifyError(err, "drop table "+table.Name)
		}
		logger.Debug("Table dropped", port.Fields{"table": table.Name})
	}
	return nil
}

// CreateTables создает все таблицы одной транзакцией
func (t *PostgresMigrationTarget) CreateTables(ctx context.Context, tables []domain.TableSpec) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return classifyError(err, "begin transaction")
	}
	defer tx.Rollback(ctx)

	for _, table := range tables {
		stmts, ok := SchemaFor(table.Name)
		if !ok {
			return fmt.Errorf("no schema defined for table %q", table.Name)
		}
		for _, stmt := range stmts {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return classifyError(err, "create table "+table.Name)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return classifyError(err, "commit transaction")
	}
	contextkeys.LoggerFromContext(ctx).Info("Tables created successfully", port.Fields{"tables": len(tables)})
	return nil
}

// CopyRows вставляет строки таблицы и выравнивает генератор id одной транзакцией,
// любая ошибка откатывает всю таблицу
func (t *PostgresMigrationTarget) CopyRows(ctx context.Context, table domain.TableSpec, columns []string, rows [][]interface{}) (domain.CopyResult, error) {
	var res domain.CopyResult
	if len(rows) == 0 {
		return res, nil
	}

	query := insertRowSQL(table.Name, columns)

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return res, classifyError(err, "begin transaction")
	}
	defer tx.Rollback(ctx)

	for i, row := range rows {
		if len(row) != len(columns) {
			return res, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(columns))
		}
		if _, err := tx.Exec(ctx, query, row...); err != nil {
			return res, classifyError(err, fmt.Sprintf("insert row %d into %s", i, table.Name))
		}
	}

	if table.PreserveIDs && table.IDColumn != "" {
		res.SequenceReset, res.MaxID, err = resetSequence(ctx, tx, table)
		if err != nil {
			return res, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.CopyResult{}, classifyError(err, "commit transaction")
	}
	res.Rows = len(rows)
	return res, nil
}

func insertRowSQL(table string, columns []string) string {
	names := make([]string, len(columns))
	holders := make([]string, len(columns))
	for i, col := range columns {
		names[i] = pgx.Identifier{col}.Sanitize()
		holders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{table}.Sanitize(), strings.Join(names, ", "), strings.Join(holders, ", "))
}

// SequenceName имя генератора, который PostgreSQL создает для SERIAL колонки
func SequenceName(table domain.TableSpec) string {
	return table.Name + "_" + table.IDColumn + "_seq"
}

type sequenceQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// resetSequence ставит генератор на MAX(id), чтобы новые строки не конфликтовали с перенесенными
func resetSequence(ctx context.Context, q sequenceQuerier, table domain.TableSpec) (bool, int64, error) {
	var maxID int64
	query := fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) FROM %s",
		pgx.Identifier{table.IDColumn}.Sanitize(), pgx.Identifier{table.Name}.Sanitize())
	if err := q.QueryRow(ctx, query).Scan(&maxID); err != nil {
		return false, 0, classifyError(err, "read max id of "+table.Name)
	}
	if maxID <= 0 {
		return false, maxID, nil
	}

	seq := SequenceName(table)
	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_class WHERE relname = $1 AND relkind = 'S')", seq).Scan(&exists); err != nil {
		return false, maxID, classifyError(err, "look up sequence "+seq)
	}
	if !exists {
		return false, maxID, nil
	}

	if _, err := q.Exec(ctx, "SELECT setval($1, $2, true)", seq, maxID); err != nil {
		return false, maxID, classifyError(err, "reset sequence "+seq)
	}
	contextkeys.LoggerFromContext(ctx).Info("Sequence reset", port.Fields{"sequence": seq, "value": maxID})
	return true, maxID, nil
}
