package sqlite_adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
	_ "modernc.org/sqlite"
)

// SQLiteMigrationSource читает таблицы базы лидов из файла SQLite
type SQLiteMigrationSource struct {
	db *sqlx.DB
}

// OpenMigrationSource открывает файл только на чтение.
// Отсутствующий файл дает domain.ErrSourceUnavailable.
func OpenMigrationSource(path string) (*SQLiteMigrationSource, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: sqlite file %q not found", domain.ErrSourceUnavailable, path)
	}

	db, err := sqlx.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	return &SQLiteMigrationSource{db: db}, nil
}

// NewMigrationSource оборачивает уже открытое соединение
func NewMigrationSource(db *sqlx.DB) (*SQLiteMigrationSource, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlx.DB cannot be nil")
	}
	return &SQLiteMigrationSource{db: db}, nil
}

func (s *SQLiteMigrationSource) TableExists(ctx context.Context, table string) (bool, error) {
	var name string
	err := s.db.QueryRowxContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return true, nil
}

// ReadRows читает все строки таблицы, упорядоченные по id
func (s *SQLiteMigrationSource) ReadRows(ctx context.Context, table domain.TableSpec) ([]domain.SourceRow, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "SQLiteMigrationSource",
		"table":     table.Name,
	})

	query := fmt.Sprintf(`SELECT * FROM "%s" ORDER BY "%s"`, table.Name, table.IDColumn)
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		logger.Error("Failed to read table", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to read table %s: %w", table.Name, err)
	}
	defer rows.Close()

	out := make([]domain.SourceRow, 0)
	for rows.Next() {
		raw := make(map[string]interface{})
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table.Name, err)
		}
		out = append(out, normalizeRow(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during %s iteration: %w", table.Name, err)
	}

	logger.Debug("Rows read", port.Fields{"count": len(out)})
	return out, nil
}

// normalizeRow TEXT из драйвера может прийти как []byte, в Postgres он должен уйти строкой
func normalizeRow(raw map[string]interface{}) domain.SourceRow {
	row := make(domain.SourceRow, len(raw))
	for col, v := range raw {
		if b, ok := v.([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = v
	}
	return row
}

func (s *SQLiteMigrationSource) Close() error {
	return s.db.Close()
}
