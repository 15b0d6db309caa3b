package domain

type Pickup struct {
	PickUpID     int64   `json:"pick_up_id"`
	CarID        *int64  `json:"car_id"`
	Address      *string `json:"address"`
	ContactPhone *string `json:"contact_phone"`
	PickUpInfo   *string `json:"pick_up_info"`
	CreatedAt    *string `json:"created_at"`
	DropoffTime  *string `json:"dropoff_time"`
}

var PickupWritableColumns = map[string]ColumnKind{
	"car_id":        ColumnInteger,
	"address":       ColumnText,
	"contact_phone": ColumnText,
	"pick_up_info":  ColumnText,
	"created_at":    ColumnText,
	"dropoff_time":  ColumnText,
}
