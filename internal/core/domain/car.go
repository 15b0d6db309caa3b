package domain

// Car строка таблицы cars. Пустые значения в базе остаются nil.
type Car struct {
	ID                int64   `json:"id"`
	VIN               *string `json:"vin"`
	Year              *int64  `json:"year"`
	Make              *string `json:"make"`
	Model             *string `json:"model"`
	Trim              *string `json:"trim"`
	Mileage           *int64  `json:"mileage"`
	InteriorCondition *string `json:"interior_condition"`
	ExteriorCondition *string `json:"exterior_condition"`
	SellerAskCents    *int64  `json:"seller_ask_cents"`
	BuyerOfferCents   *int64  `json:"buyer_offer_cents"`
	CreatedAt         *string `json:"created_at"`
	LeadID            *int64  `json:"lead_id"`
}

// CarCandidate краткая карточка для неоднозначного поиска
type CarCandidate struct {
	ID    int64   `json:"id"`
	Year  *int64  `json:"year"`
	Make  *string `json:"make"`
	Model *string `json:"model"`
	VIN   *string `json:"vin"`
}

func (c Car) Candidate() CarCandidate {
	return CarCandidate{ID: c.ID, Year: c.Year, Make: c.Make, Model: c.Model, VIN: c.VIN}
}

// CarLookupKey ключи поиска машины в порядке приоритета
type CarLookupKey string

const (
	CarLookupByID    CarLookupKey = "car_id"
	CarLookupByVIN   CarLookupKey = "vin"
	CarLookupByModel CarLookupKey = "model"
	CarLookupByMake  CarLookupKey = "make"
	CarLookupByYear  CarLookupKey = "year"
)

var CarLookupPriority = []CarLookupKey{CarLookupByID, CarLookupByVIN, CarLookupByModel, CarLookupByMake, CarLookupByYear}

// ColumnKind тип колонки для приведения аргументов модели
type ColumnKind int

const (
	ColumnText ColumnKind = iota
	ColumnInteger
)

// CarWritableColumns колонки, которые разрешено менять через инструменты
var CarWritableColumns = map[string]ColumnKind{
	"vin":                ColumnText,
	"year":               ColumnInteger,
	"make":               ColumnText,
	"model":              ColumnText,
	"trim":               ColumnText,
	"mileage":            ColumnInteger,
	"interior_condition": ColumnText,
	"exterior_condition": ColumnText,
	"seller_ask_cents":   ColumnInteger,
	"buyer_offer_cents":  ColumnInteger,
	"created_at":         ColumnText,
	"lead_id":            ColumnInteger,
}

// FieldPatch приведенные к типам колонок значения для UPDATE/INSERT
type FieldPatch map[string]interface{}
