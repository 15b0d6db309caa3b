package postgres_adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jsamit27/ava/internal/core/domain"
)

// Коды SQLSTATE, которые переводятся в доменные ошибки
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
)

// classifyError оборачивает ошибку pgx доменной ошибкой, сохраняя текст оригинала
func classifyError(err error, action string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			if strings.Contains(strings.ToLower(pgErr.ConstraintName), "vin") {
				return fmt.Errorf("%w: %s", domain.ErrVINConflict, pgErr.Message)
			}
			return fmt.Errorf("%w: %s", domain.ErrIntegrity, pgErr.Message)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %s", domain.ErrForeignKey, pgErr.Message)
		case codeNotNullViolation, codeCheckViolation:
			return fmt.Errorf("%w: %s", domain.ErrIntegrity, pgErr.Message)
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrDBUnavailable, err)
	}

	return fmt.Errorf("failed to %s: %w", action, err)
}
