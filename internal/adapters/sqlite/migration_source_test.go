package sqlite_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSource(t *testing.T) (*SQLiteMigrationSource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	src, err := NewMigrationSource(sqlx.NewDb(db, "sqlite"))
	require.NoError(t, err)
	return src, mock
}

func TestTableExists(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectQuery("SELECT name FROM sqlite_master").
		WithArgs("cars").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("cars"))
	mock.ExpectQuery("SELECT name FROM sqlite_master").
		WithArgs("pickup").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	ok, err := src.TableExists(context.Background(), "cars")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = src.TableExists(context.Background(), "pickup")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReadRowsConvertsBytes(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectQuery(`SELECT \* FROM "buyers" ORDER BY "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "phone_number"}).
			AddRow(int64(1), []byte("Ann"), nil).
			AddRow(int64(2), "Bob", "555-0100"))

	rows, err := src.ReadRows(context.Background(), domain.TableSpec{Name: "buyers", IDColumn: "id"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ann", rows[0]["first_name"])
	assert.Nil(t, rows[0]["phone_number"])
	assert.Equal(t, "Bob", rows[1]["first_name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenMigrationSourceMissingFile(t *testing.T) {
	_, err := OpenMigrationSource(filepath.Join(t.TempDir(), "absent.db"))
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	_, err = OpenMigrationSource(filepath.Join(dir, "sub"))
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestNewMigrationSourceNil(t *testing.T) {
	_, err := NewMigrationSource(nil)
	assert.Error(t, err)
}
