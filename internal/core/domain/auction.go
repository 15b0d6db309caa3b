package domain

// AuctionLocation площадка Manheim из CSV по штатам
type AuctionLocation struct {
	Name          string
	AddressStreet string
	City          string
	State         string
	Zip           string
	Phone         string
	Website       string
	Latitude      string
	Longitude     string
}

// DistanceMatch лучший пункт назначения одного запроса Distance Matrix
type DistanceMatch struct {
	Address        string
	DistanceMeters float64
	DurationText   string
}

type SearchLayer string

const (
	LayerInState  SearchLayer = "in_state"
	LayerNeighbor SearchLayer = "neighbor"
	LayerNational SearchLayer = "national"
)

// ClosestAuction результат поиска ближайшей площадки
type ClosestAuction struct {
	Address           string      `json:"address"`
	DurationText      string      `json:"duration_text"`
	DistanceMiles     float64     `json:"distance_miles"`
	State             string      `json:"state"`
	StateCSV          string      `json:"state_csv"`
	Layer             SearchLayer `json:"layer"`
	NeighborsChecked  []string    `json:"neighbors_checked"`
	ThresholdExceeded bool        `json:"threshold_exceeded"`
}

// ScrapeReport итог работы скрапера
type ScrapeReport struct {
	PagesVisited   int
	LocationsFound int
	Unique         int
	ByState        map[string]int
}
