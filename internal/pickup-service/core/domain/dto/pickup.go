package dto

import "time"

type PickupRequestDto struct {
	Address           *string   `json:"address"`
	ScheduledAt       *string   `json:"scheduled_at"` // RFC3339
	Categories        []string  `json:"categories"`
	EstimatedWeightKg *float64  `json:"estimated_weight_kg"`
}

type PickupResponseDto struct {
	PickupID           string     `json:"pickup_id"`
	PickupNumber       string     `json:"pickup_number"`
	RequesterID        string     `json:"requester_id"`
	Address            string     `json:"address"`
	ScheduledAt        time.Time  `json:"scheduled_at"`
	Categories         []string   `json:"categories"`
	EstimatedWeightKg  float64    `json:"estimated_weight_kg"`
	Status             string     `json:"status"`
	DriverID           string     `json:"driver_id,omitempty"`
	ActualWeightKg     float64    `json:"actual_weight_kg,omitempty"`
	PointsEarned       int64      `json:"points_earned,omitempty"`
	CommissionAmount   float64    `json:"commission_amount,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

type AdvanceStatusDto struct {
	Status *string `json:"status"`
}

type CompletePickupDto struct {
	ActualWeightKg *float64 `json:"actual_weight_kg"`
}

type CompletePickupResponseDto struct {
	PickupID         string  `json:"pickup_id"`
	Status           string  `json:"status"`
	ActualWeightKg   float64 `json:"actual_weight_kg"`
	PointsEarned     int64   `json:"points_earned"`
	CommissionAmount float64 `json:"commission_amount"`
	CompletedAt      string  `json:"completed_at"`
}

type CancelPickupDto struct {
	Reason string `json:"reason"`
}
