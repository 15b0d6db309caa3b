package port

import (
	"context"

	"github.com/jsamit27/ava/internal/core/domain"
)

// MigrationSourcePort чтение исходной базы
type MigrationSourcePort interface {
	TableExists(ctx context.Context, table string) (bool, error)
	ReadRows(ctx context.Context, table domain.TableSpec) ([]domain.SourceRow, error)
	Close() error
}

// MigrationTargetPort запись в целевую базу
type MigrationTargetPort interface {
	// DropTables удаляет таблицы в переданном порядке
	DropTables(ctx context.Context, tables []domain.TableSpec) error
	CreateTables(ctx context.Context, tables []domain.TableSpec) error
	// CopyRows пишет строки и выравнивает генератор id одной транзакцией
	CopyRows(ctx context.Context, table domain.TableSpec, columns []string, rows [][]interface{}) (domain.CopyResult, error)
}

// LocationFetcherPort обход страниц каталога площадок
type LocationFetcherPort interface {
	FetchLocations(ctx context.Context) ([]domain.AuctionLocation, int, error)
}

// LocationWriterPort выгрузка площадок в CSV по штатам
type LocationWriterPort interface {
	WriteAll(ctx context.Context, locations []domain.AuctionLocation) error
	WriteByState(ctx context.Context, byState map[string][]domain.AuctionLocation) error
	WriteSummary(ctx context.Context, counts map[string]int) error
}
