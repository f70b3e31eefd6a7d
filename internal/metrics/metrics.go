package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PickupsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastecollect_pickups_created_total",
		Help: "Number of pickup requests created.",
	})
	PickupsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastecollect_pickups_accepted_total",
		Help: "Number of pickups accepted by a driver.",
	})
	PickupsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastecollect_pickups_completed_total",
		Help: "Number of pickups completed and settled.",
	})
	PickupsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastecollect_pickups_cancelled_total",
		Help: "Number of pickups cancelled.",
	})
	AcceptConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastecollect_accept_conflicts_total",
		Help: "Accept attempts that lost the compare-and-swap race.",
	})

	PointsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastecollect_points_issued_total",
		Help: "Points credited by settlements.",
	})
	PointsSpent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastecollect_points_spent_total",
		Help: "Points debited by redemptions.",
	})
	Redemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wastecollect_redemptions_total",
		Help: "Redemption attempts by outcome.",
	}, []string{"outcome"})
)
