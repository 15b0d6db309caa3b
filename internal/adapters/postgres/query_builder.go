package postgres_adapter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jsamit27/ava/internal/core/domain"
)

// sortedColumns колонки патча в алфавитном порядке, чтобы SQL был детерминированным
func sortedColumns(patch domain.FieldPatch) []string {
	cols := make([]string, 0, len(patch))
	for col := range patch {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// buildUpdate собирает UPDATE ... SET ... WHERE idColumn = $N
func buildUpdate(table, idColumn string, id int64, patch domain.FieldPatch) (string, []interface{}) {
	cols := sortedColumns(patch)
	sets := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols)+1)
	for i, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", pgx.Identifier{col}.Sanitize(), i+1))
		args = append(args, patch[col])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		pgx.Identifier{table}.Sanitize(), strings.Join(sets, ", "), pgx.Identifier{idColumn}.Sanitize(), len(args))
	return query, args
}

// buildInsert собирает INSERT с явным id и RETURNING
func buildInsert(table, idColumn string, id int64, patch domain.FieldPatch, returning string) (string, []interface{}) {
	cols := sortedColumns(patch)
	names := []string{pgx.Identifier{idColumn}.Sanitize()}
	holders := []string{"$1"}
	args := []interface{}{id}
	for i, col := range cols {
		names = append(names, pgx.Identifier{col}.Sanitize())
		holders = append(holders, fmt.Sprintf("$%d", i+2))
		args = append(args, patch[col])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		pgx.Identifier{table}.Sanitize(), strings.Join(names, ", "), strings.Join(holders, ", "), returning)
	return query, args
}

// nextTempID следующий отрицательный id для строк, созданных в песочнице.
// Вызывается внутри транзакции под advisory lock таблицы.
func nextTempID(ctx context.Context, tx pgx.Tx, table, idColumn string) (int64, error) {
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", table+"_temp_id"); err != nil {
		return 0, err
	}

	var minID *int64
	query := fmt.Sprintf("SELECT MIN(%s) FROM %s", pgx.Identifier{idColumn}.Sanitize(), pgx.Identifier{table}.Sanitize())
	if err := tx.QueryRow(ctx, query).Scan(&minID); err != nil {
		return 0, err
	}
	return tempIDAfter(minID), nil
}

func tempIDAfter(minID *int64) int64 {
	if minID == nil || *minID > 0 {
		return -1
	}
	return *minID - 1
}
