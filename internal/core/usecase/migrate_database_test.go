package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(tables []domain.TableSpec) []string {
	out := make([]string, len(tables))
	for i, t := range tables {
		out[i] = t.Name
	}
	return out
}

func TestOrderTables_LeadDatabase(t *testing.T) {
	ordered, err := OrderTables(domain.LeadDatabaseTables())
	require.NoError(t, err)
	assert.Equal(t, []string{"buyers", "leads", "buyer_schedule", "cars", "lead_buyer_map", "pickup"}, names(ordered))
}

func TestOrderTables_Errors(t *testing.T) {
	_, err := OrderTables([]domain.TableSpec{
		{Name: "a", DependsOn: []string{"b"}},
		{Name: "b", DependsOn: []string{"a"}},
		{Name: "c"},
	})
	assert.ErrorIs(t, err, domain.ErrDependencyCycle)
	assert.ErrorContains(t, err, "a, b")

	_, err = OrderTables([]domain.TableSpec{{Name: "a", DependsOn: []string{"ghost"}}})
	assert.ErrorIs(t, err, domain.ErrUnknownDependency)

	_, err = OrderTables([]domain.TableSpec{{Name: "a"}, {Name: "a"}})
	assert.Error(t, err)
}

type fakeSource struct {
	rows    map[string][]domain.SourceRow
	missing map[string]bool
}

func (s *fakeSource) TableExists(_ context.Context, table string) (bool, error) {
	return !s.missing[table], nil
}

func (s *fakeSource) ReadRows(_ context.Context, table domain.TableSpec) ([]domain.SourceRow, error) {
	return s.rows[table.Name], nil
}

func (s *fakeSource) Close() error { return nil }

type copyCall struct {
	table   string
	columns []string
	rows    [][]interface{}
}

type fakeTarget struct {
	dropped []string
	created []string
	copies  []copyCall
	resets  []string
	copyErr error
}

func (t *fakeTarget) DropTables(_ context.Context, tables []domain.TableSpec) error {
	t.dropped = names(tables)
	return nil
}

func (t *fakeTarget) CreateTables(_ context.Context, tables []domain.TableSpec) error {
	t.created = names(tables)
	return nil
}

func (t *fakeTarget) CopyRows(_ context.Context, table domain.TableSpec, columns []string, rows [][]interface{}) (domain.CopyResult, error) {
	if t.copyErr != nil {
		return domain.CopyResult{}, t.copyErr
	}
	t.copies = append(t.copies, copyCall{table: table.Name, columns: columns, rows: rows})
	res := domain.CopyResult{Rows: len(rows)}
	if table.PreserveIDs {
		t.resets = append(t.resets, table.Name)
		res.SequenceReset = true
		res.MaxID = 10
	}
	return res, nil
}

func TestMigrateDatabase(t *testing.T) {
	tables := []domain.TableSpec{
		{Name: "parents", Columns: []string{"id", "name"}, IDColumn: "id", PreserveIDs: true},
		{Name: "links", Columns: []string{"id", "parent_id", "note"}, IDColumn: "id", DependsOn: []string{"parents"}},
		{Name: "empty", Columns: []string{"id"}, IDColumn: "id", PreserveIDs: true},
	}
	source := &fakeSource{
		rows: map[string][]domain.SourceRow{
			"parents": {{"id": int64(1), "name": "a"}, {"id": int64(2), "name": "b"}},
			"links":   {{"id": int64(9), "parent_id": int64(1)}},
		},
	}
	target := &fakeTarget{}

	report, err := NewMigrateDatabaseUseCase(source, target, tables).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"empty", "parents", "links"}, report.Order)
	assert.Equal(t, []string{"links", "parents", "empty"}, target.dropped)
	assert.Equal(t, report.Order, target.created)
	assert.Equal(t, 3, report.TotalRows())

	require.Len(t, target.copies, 2)
	assert.Equal(t, []string{"id", "name"}, target.copies[0].columns)
	assert.Equal(t, []string{"parent_id", "note"}, target.copies[1].columns)
	assert.Equal(t, [][]interface{}{{int64(1), nil}}, target.copies[1].rows)
	assert.Equal(t, []string{"parents"}, target.resets)

	assert.True(t, report.Tables[0].Skipped)
	assert.True(t, report.Tables[1].SequenceReset)
	assert.Equal(t, int64(10), report.Tables[1].MaxID)
	assert.False(t, report.Tables[2].SequenceReset)
}

func TestMigrateDatabase_MissingSourceTableAbortsBeforeReset(t *testing.T) {
	source := &fakeSource{
		rows:    map[string][]domain.SourceRow{"parents": {{"id": int64(1)}}},
		missing: map[string]bool{"leads": true, "gone": true},
	}
	target := &fakeTarget{}

	report, err := NewMigrateDatabaseUseCase(source, target, []domain.TableSpec{
		{Name: "parents", Columns: []string{"id"}, IDColumn: "id", PreserveIDs: true},
		{Name: "leads", Columns: []string{"id"}, IDColumn: "id", PreserveIDs: true},
		{Name: "gone", Columns: []string{"id"}, IDColumn: "id"},
	}).Execute(context.Background())

	require.ErrorIs(t, err, domain.ErrSourceTableMissing)
	assert.ErrorContains(t, err, "gone, leads")
	assert.Nil(t, report)
	assert.Nil(t, target.dropped)
	assert.Nil(t, target.created)
	assert.Empty(t, target.copies)
}

func TestMigrateDatabase_CopyFailureNamesTable(t *testing.T) {
	source := &fakeSource{rows: map[string][]domain.SourceRow{"parents": {{"id": int64(1)}}}}
	target := &fakeTarget{copyErr: errors.New("violates foreign key constraint")}

	_, err := NewMigrateDatabaseUseCase(source, target, []domain.TableSpec{
		{Name: "parents", Columns: []string{"id"}, IDColumn: "id", PreserveIDs: true},
	}).Execute(context.Background())

	assert.ErrorContains(t, err, "table parents: violates foreign key constraint")
}

func TestDedupeLocations(t *testing.T) {
	in := []domain.AuctionLocation{
		{Name: "Manheim Dallas", City: "Dallas", State: "Texas"},
		{Name: "manheim dallas ", City: "dallas", State: "TX"},
		{Name: "Manheim Tulsa", City: "Tulsa", State: "ok"},
	}
	out := DedupeLocations(in)
	require.Len(t, out, 2)
	assert.Equal(t, "TX", out[0].State)
	assert.Equal(t, "OK", out[1].State)
}
