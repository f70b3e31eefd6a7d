package dto

type SystemOverview struct {
	Timestamp       string           `json:"timestamp"`
	Pickups         PickupCounts     `json:"pickups"`
	Points          PointsTotals     `json:"points"`
	CommissionTotal float64          `json:"commission_total"`
	TopDrivers      []TopDriverEntry `json:"top_drivers"`
}

// PickupCounts buckets every pickup ever created by its current status.
type PickupCounts struct {
	Scheduled  int64 `json:"scheduled"`
	Assigned   int64 `json:"assigned"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
}

type PointsTotals struct {
	Issued      int64 `json:"issued"`
	Spent       int64 `json:"spent"`
	Outstanding int64 `json:"outstanding"`
}

type TopDriverEntry struct {
	DriverID         string  `json:"driver_id"`
	PickupsCompleted int64   `json:"pickups_completed"`
	CommissionEarned float64 `json:"commission_earned"`
}

type DriverPerformanceDto struct {
	Day              string  `json:"day"`
	PickupsCompleted int64   `json:"pickups_completed"`
	TotalWeightKg    float64 `json:"total_weight_kg"`
	CommissionEarned float64 `json:"commission_earned"`
	AverageRating    float64 `json:"average_rating"`
}

type UpdateRatingDto struct {
	Day           *string  `json:"day"`
	AverageRating *float64 `json:"average_rating"`
}
