package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
)

// MigrateDatabaseUseCase полная копия базы лидов: целевые таблицы пересоздаются
type MigrateDatabaseUseCase struct {
	source port.MigrationSourcePort
	target port.MigrationTargetPort
	tables []domain.TableSpec
}

func NewMigrateDatabaseUseCase(source port.MigrationSourcePort, target port.MigrationTargetPort, tables []domain.TableSpec) *MigrateDatabaseUseCase {
	return &MigrateDatabaseUseCase{source: source, target: target, tables: tables}
}

func (uc *MigrateDatabaseUseCase) Execute(ctx context.Context) (*domain.MigrationReport, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "MigrateDatabase"})
	ucLogger.Info("Use case started", port.Fields{"tables": len(uc.tables)})

	report := &domain.MigrationReport{StartedAt: time.Now().UTC()}

	order, err := OrderTables(uc.tables)
	if err != nil {
		ucLogger.Error("Failed to order tables", err, nil)
		return nil, err
	}
	for _, t := range order {
		report.Order = append(report.Order, t.Name)
	}
	ucLogger.Info("Copy order resolved", port.Fields{"order": report.Order})

	if err := uc.checkSource(ctx, order); err != nil {
		ucLogger.Error("Source database is incomplete", err, nil)
		return nil, err
	}

	if err := uc.target.DropTables(ctx, reversed(order)); err != nil {
		ucLogger.Error("Failed to drop target tables", err, nil)
		return nil, fmt.Errorf("failed to drop target tables: %w", err)
	}
	if err := uc.target.CreateTables(ctx, order); err != nil {
		ucLogger.Error("Failed to create target tables", err, nil)
		return nil, fmt.Errorf("failed to create target tables: %w", err)
	}

	for _, table := range order {
		tr, err := uc.copyTable(ctx, table)
		if err != nil {
			ucLogger.Error("Table copy failed", err, port.Fields{"table": table.Name})
			return nil, fmt.Errorf("table %s: %w", table.Name, err)
		}
		report.Tables = append(report.Tables, tr)
	}

	report.FinishedAt = time.Now().UTC()
	ucLogger.Info("Use case finished successfully", port.Fields{
		"rows":        report.TotalRows(),
		"duration_ms": report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	})
	return report, nil
}

// checkSource проверяет наличие всех таблиц до того, как целевая база будет очищена
func (uc *MigrateDatabaseUseCase) checkSource(ctx context.Context, tables []domain.TableSpec) error {
	var missing []string
	for _, table := range tables {
		exists, err := uc.source.TableExists(ctx, table.Name)
		if err != nil {
			return fmt.Errorf("table %s: failed to inspect source: %w", table.Name, err)
		}
		if !exists {
			missing = append(missing, table.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrSourceTableMissing, strings.Join(missing, ", "))
	}
	return nil
}

func (uc *MigrateDatabaseUseCase) copyTable(ctx context.Context, table domain.TableSpec) (domain.TableReport, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"table": table.Name})
	tr := domain.TableReport{Table: table.Name}

	rows, err := uc.source.ReadRows(ctx, table)
	if err != nil {
		return tr, fmt.Errorf("failed to read source rows: %w", err)
	}
	tr.RowsRead = len(rows)
	if len(rows) == 0 {
		logger.Info("Source table is empty, skipping", nil)
		tr.Skipped = true
		return tr, nil
	}

	columns := table.InsertColumns()
	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		v := make([]interface{}, len(columns))
		for i, col := range columns {
			v[i] = row[col]
		}
		values = append(values, v)
	}

	res, err := uc.target.CopyRows(ctx, table, columns, values)
	if err != nil {
		return tr, err
	}
	tr.RowsWritten = res.Rows
	tr.SequenceReset = res.SequenceReset
	tr.MaxID = res.MaxID

	logger.Info("Table copied", port.Fields{"rows": res.Rows, "sequence_reset": tr.SequenceReset})
	return tr, nil
}
