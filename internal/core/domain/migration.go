package domain

import "time"

// TableSpec описание копируемой таблицы
type TableSpec struct {
	Name        string
	Columns     []string
	IDColumn    string
	PreserveIDs bool
	DependsOn   []string
}

// InsertColumns колонки для INSERT: без id, если ключи генерирует целевая база
func (t TableSpec) InsertColumns() []string {
	if t.PreserveIDs || t.IDColumn == "" {
		return t.Columns
	}
	out := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c != t.IDColumn {
			out = append(out, c)
		}
	}
	return out
}

// SourceRow строка источника, ключ - имя колонки
type SourceRow map[string]interface{}

// CopyResult итог записи таблицы в целевую базу
type CopyResult struct {
	Rows          int
	SequenceReset bool
	MaxID         int64
}

// TableReport итог копирования одной таблицы
type TableReport struct {
	Table         string
	RowsRead      int
	RowsWritten   int
	Skipped       bool
	SequenceReset bool
	MaxID         int64
}

type MigrationReport struct {
	Order      []string
	Tables     []TableReport
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r MigrationReport) TotalRows() int {
	total := 0
	for _, t := range r.Tables {
		total += t.RowsWritten
	}
	return total
}

// LeadDatabaseTables шесть таблиц базы лидов
func LeadDatabaseTables() []TableSpec {
	return []TableSpec{
		{
			Name:        "leads",
			Columns:     []string{"id", "first_name", "last_name", "phone", "email", "chat_logs", "created_at"},
			IDColumn:    "id",
			PreserveIDs: true,
		},
		{
			Name:        "buyers",
			Columns:     []string{"id", "first_name", "last_name", "phone_number", "created_at"},
			IDColumn:    "id",
			PreserveIDs: true,
		},
		{
			Name: "cars",
			Columns: []string{"id", "vin", "year", "make", "model", "trim", "mileage", "interior_condition",
				"exterior_condition", "seller_ask_cents", "buyer_offer_cents", "created_at", "lead_id"},
			IDColumn:    "id",
			PreserveIDs: true,
			DependsOn:   []string{"leads"},
		},
		{
			Name:        "lead_buyer_map",
			Columns:     []string{"id", "lead_id", "buyer_id"},
			IDColumn:    "id",
			PreserveIDs: false,
			DependsOn:   []string{"leads", "buyers"},
		},
		{
			Name:        "pickup",
			Columns:     []string{"pick_up_id", "car_id", "address", "contact_phone", "pick_up_info", "created_at", "dropoff_time"},
			IDColumn:    "pick_up_id",
			PreserveIDs: true,
			DependsOn:   []string{"cars"},
		},
		{
			Name:        "buyer_schedule",
			Columns:     []string{"id", "buyer_id", "description", "schedule_time", "priority"},
			IDColumn:    "id",
			PreserveIDs: false,
			DependsOn:   []string{"buyers"},
		},
	}
}
