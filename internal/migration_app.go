package internal

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	postgres_adapter "github.com/jsamit27/ava/internal/adapters/postgres"
	sqlite_adapter "github.com/jsamit27/ava/internal/adapters/sqlite"
	"github.com/jsamit27/ava/internal/configs"
	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
	"github.com/jsamit27/ava/internal/core/usecase"
	"github.com/jsamit27/ava/pkg/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MigrationApp разовая копия базы лидов из SQLite в Postgres
type MigrationApp struct {
	source  *sqlite_adapter.SQLiteMigrationSource
	dbPool  *pgxpool.Pool
	migrate *usecase.MigrateDatabaseUseCase
	loggers *loggers
	logger  port.LoggerPort
	out     io.Writer
}

// NewMigrationApp sqlitePath перекрывает SQLITE_PATH, если не пустой
func NewMigrationApp(sqlitePath string, out io.Writer) (*MigrationApp, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}
	if sqlitePath != "" {
		appConfig.Migration.SQLitePath = sqlitePath
	}
	if err := appConfig.RequireDatabase(); err != nil {
		return nil, err
	}

	lg, err := initLoggers(appConfig, "migration")
	if err != nil {
		return nil, err
	}
	appLogger := lg.base.WithFields(port.Fields{"component": "app"})

	source, err := sqlite_adapter.OpenMigrationSource(appConfig.Migration.SQLitePath)
	if err != nil {
		appLogger.Error("Failed to open SQLite source", err, port.Fields{"path": appConfig.Migration.SQLitePath})
		lg.close()
		return nil, fmt.Errorf("SQLite database not found or unreadable at %s: %w", appConfig.Migration.SQLitePath, err)
	}
	appLogger.Info("SQLite source opened", port.Fields{"path": appConfig.Migration.SQLitePath})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	dbPool, err := postgres.NewClient(ctx, postgres.Config{DatabaseURL: appConfig.Database.URL, MaxConns: 2})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, port.Fields{"target": postgres.SafeTarget(appConfig.Database.URL)})
		source.Close()
		lg.close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	appLogger.Info("Connected to PostgreSQL", port.Fields{"target": postgres.SafeTarget(appConfig.Database.URL)})

	target, err := postgres_adapter.NewPostgresMigrationTarget(dbPool)
	if err != nil {
		dbPool.Close()
		source.Close()
		lg.close()
		return nil, err
	}

	return &MigrationApp{
		source:  source,
		dbPool:  dbPool,
		migrate: usecase.NewMigrateDatabaseUseCase(source, target, domain.LeadDatabaseTables()),
		loggers: lg,
		logger:  appLogger,
		out:     out,
	}, nil
}

func (a *MigrationApp) Run() error {
	defer func() {
		if err := a.source.Close(); err != nil {
			a.logger.Error("Error closing SQLite source", err, nil)
		}
		a.dbPool.Close()
		a.loggers.close()
	}()

	ctx := contextkeys.ContextWithLogger(context.Background(), a.logger)
	report, err := a.migrate.Execute(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	printMigrationReport(a.out, report)
	return nil
}

func printMigrationReport(out io.Writer, report *domain.MigrationReport) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tROWS\tSEQUENCE")
	for _, t := range report.Tables {
		seq := "-"
		switch {
		case t.Skipped:
			seq = "skipped (empty)"
		case t.SequenceReset:
			seq = fmt.Sprintf("reset to %d", t.MaxID)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", t.Table, t.RowsWritten, seq)
	}
	tw.Flush()
	fmt.Fprintf(out, "Migration completed: %d rows in %s\n", report.TotalRows(), report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
}
