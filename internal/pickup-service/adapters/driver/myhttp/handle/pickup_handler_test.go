package handle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"waste-collect/internal/pickup-service/core/domain/model"
)

func TestToResponseCarriesSettlementFields(t *testing.T) {
	completedAt := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)
	p := model.Pickup{
		ID:               "pickup-1",
		Status:           model.StatusCompleted,
		DriverID:         "driver-1",
		ActualWeightKg:   4,
		PointsEarned:     12,
		CommissionAmount: 0.4,
		CompletedAt:      completedAt,
	}

	out := toResponse(p)
	require.EqualValues(t, 4, out.ActualWeightKg)
	require.EqualValues(t, 12, out.PointsEarned)
	require.InDelta(t, 0.4, out.CommissionAmount, 1e-9)
	require.NotNil(t, out.CompletedAt)
	require.Equal(t, completedAt, *out.CompletedAt)
}

func TestToResponseCarriesCancellationReason(t *testing.T) {
	p := model.Pickup{
		ID:                 "pickup-2",
		Status:             model.StatusCancelled,
		CancellationReason: "changed my mind",
	}

	out := toResponse(p)
	require.Equal(t, "changed my mind", out.CancellationReason)
	require.Nil(t, out.CompletedAt, "an unsettled pickup has no completion timestamp")
}
