package websocketdto

import "encoding/json"

type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type PickupStatusUpdateDto struct {
	PickupID      string `json:"pickup_id"`
	PickupNumber  string `json:"pickup_number"`
	Status        string `json:"status"`
	DriverID      string `json:"driver_id,omitempty"`
	CorrelationID string `json:"correlation_id"`
}

type SettlementUpdateDto struct {
	PickupID         string  `json:"pickup_id"`
	PointsEarned     int64   `json:"points_earned"`
	CommissionAmount float64 `json:"commission_amount"`
	CompletedAt      string  `json:"completed_at"`
}
