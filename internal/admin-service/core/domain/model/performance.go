package model

// DriverDailyPerformance is one aggregated row per driver per day, maintained
// incrementally by pickup settlements. AverageRating comes from the review
// collaborator and is written through the admin endpoint, never recomputed
// here.
type DriverDailyPerformance struct {
	DriverID         string
	Day              string
	PickupsCompleted int64
	TotalWeightKg    float64
	CommissionEarned float64
	AverageRating    float64
}
