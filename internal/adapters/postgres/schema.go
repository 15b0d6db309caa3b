package postgres_adapter

// leadSchema DDL таблиц базы лидов в PostgreSQL
var leadSchema = map[string][]string{
	"leads": {`CREATE TABLE leads (
		id SERIAL PRIMARY KEY,
		first_name TEXT,
		last_name TEXT,
		phone TEXT,
		email TEXT,
		chat_logs TEXT,
		created_at TEXT
	)`},
	"buyers": {`CREATE TABLE buyers (
		id SERIAL PRIMARY KEY,
		first_name TEXT,
		last_name TEXT,
		phone_number TEXT,
		created_at TEXT
	)`},
	"cars": {`CREATE TABLE cars (
		id INTEGER PRIMARY KEY,
		vin TEXT,
		year INTEGER,
		make TEXT,
		model TEXT,
		trim TEXT,
		mileage INTEGER,
		interior_condition TEXT,
		exterior_condition TEXT,
		seller_ask_cents INTEGER,
		buyer_offer_cents INTEGER,
		created_at TEXT,
		lead_id INTEGER,
		FOREIGN KEY(lead_id) REFERENCES leads(id)
	)`,
		`CREATE UNIQUE INDEX idx_cars_vin_unique ON cars(vin)`,
	},
	"lead_buyer_map": {`CREATE TABLE lead_buyer_map (
		id SERIAL PRIMARY KEY,
		lead_id INTEGER,
		buyer_id INTEGER,
		FOREIGN KEY(lead_id) REFERENCES leads(id),
		FOREIGN KEY(buyer_id) REFERENCES buyers(id)
	)`},
	"pickup": {`CREATE TABLE pickup (
		pick_up_id INTEGER PRIMARY KEY,
		car_id INTEGER,
		address TEXT,
		contact_phone TEXT,
		pick_up_info TEXT,
		created_at TEXT,
		dropoff_time TEXT,
		FOREIGN KEY(car_id) REFERENCES cars(id)
	)`},
	"buyer_schedule": {`CREATE TABLE buyer_schedule (
		id SERIAL PRIMARY KEY,
		buyer_id INTEGER NOT NULL,
		description TEXT NOT NULL,
		schedule_time TEXT NOT NULL,
		priority TEXT CHECK (priority IN ('Low','Medium','High')) DEFAULT 'Medium'
	)`},
}

// SchemaFor statements для создания таблицы, false если таблица неизвестна
func SchemaFor(table string) ([]string, bool) {
	stmts, ok := leadSchema[table]
	return stmts, ok
}
