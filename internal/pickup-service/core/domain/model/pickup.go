package model

import "time"

type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusAssigned   Status = "ASSIGNED"
	StatusEnRoute    Status = "EN_ROUTE"
	StatusArrived    Status = "ARRIVED"
	StatusCollecting Status = "COLLECTING"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// statusRank orders the forward progression. Terminal states carry no rank.
var statusRank = map[Status]int{
	StatusScheduled:  0,
	StatusAssigned:   1,
	StatusEnRoute:    2,
	StatusArrived:    3,
	StatusCollecting: 4,
	StatusCompleted:  5,
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Advisory progress statuses a driver may report between acceptance and
// completion. They carry no ledger side effects.
func (s Status) Intermediate() bool {
	return s == StatusEnRoute || s == StatusArrived || s == StatusCollecting
}

// CanAdvance reports whether an advisory progress transition from -> to is
// legal: strictly forward, never backward, never out of a terminal state.
// Skipping intermediate steps is allowed.
func CanAdvance(from, to Status) bool {
	if !to.Intermediate() {
		return false
	}
	fromRank, ok := statusRank[from]
	if !ok || from.Terminal() || from == StatusScheduled {
		return false
	}
	return statusRank[to] > fromRank
}

// CanComplete reports whether a pickup in the given status may be completed.
// Completion is legal from any post-acceptance, pre-terminal state so a
// progression that skipped intermediate steps can still finish.
func CanComplete(from Status) bool {
	return from == StatusAssigned || from.Intermediate()
}

type Pickup struct {
	ID                 string // uuid
	PickupNumber       string
	RequesterID        string // uuid
	Address            string
	ScheduledAt        time.Time
	Categories         []string
	EstimatedWeightKg  float64
	Status             Status
	DriverID           string // uuid, empty until accepted
	ActualWeightKg     float64
	PointsEarned       int64
	CommissionAmount   float64
	CancellationReason string
	CreatedAt          time.Time
	CompletedAt        time.Time
}

// Assigned reports whether a driver currently owns the pickup.
func (p Pickup) Assigned() bool {
	return p.DriverID != ""
}
