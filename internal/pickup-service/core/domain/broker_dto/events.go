package brokerdto

// StatusEvent is published on every successful lifecycle transition. A CAS
// transition fires exactly once, so consumers never see duplicates for a
// status already reached.
type StatusEvent struct {
	PickupID      string `json:"pickup_id"`
	PickupNumber  string `json:"pickup_number"`
	RequesterID   string `json:"requester_id"`
	DriverID      string `json:"driver_id,omitempty"`
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
	Timestamp     string `json:"timestamp"`
	CorrelationID string `json:"correlation_id"`
}

// SettlementEvent is published once per completed pickup.
type SettlementEvent struct {
	PickupID         string  `json:"pickup_id"`
	RequesterID      string  `json:"requester_id"`
	DriverID         string  `json:"driver_id"`
	ActualWeightKg   float64 `json:"actual_weight_kg"`
	PointsEarned     int64   `json:"points_earned"`
	CommissionAmount float64 `json:"commission_amount"`
	CompletedAt      string  `json:"completed_at"`
}
