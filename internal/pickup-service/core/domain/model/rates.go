package model

import "time"

// WasteRate converts collected kilograms of one category into points and
// driver commission.
type WasteRate struct {
	Category       string
	PointsPerKg    float64
	CommissionRate float64
	Active         bool
}

// Settlement is the outcome of completing a pickup, carrying the values the
// storage layer actually persisted.
type Settlement struct {
	PickupID         string
	ActualWeightKg   float64
	PointsEarned     int64
	CommissionAmount float64
	CompletedAt      time.Time
}

// SettleParams carries everything the storage layer needs to complete a
// pickup, credit the requester and bump the driver's daily totals in one
// atomic step.
type SettleParams struct {
	PickupID         string
	DriverID         string
	RequesterID      string
	ActualWeightKg   float64
	PointsEarned     int64
	CommissionAmount float64
	CompletedAt      time.Time
}
