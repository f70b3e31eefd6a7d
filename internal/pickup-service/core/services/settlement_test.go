package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"waste-collect/internal/pickup-service/core/domain/model"
)

func rateTable() map[string]model.WasteRate {
	return map[string]model.WasteRate{
		"plastic": {Category: "plastic", PointsPerKg: 3, CommissionRate: 0.1, Active: true},
		"glass":   {Category: "glass", PointsPerKg: 2, CommissionRate: 0.05, Active: true},
		"metal":   {Category: "metal", PointsPerKg: 5, CommissionRate: 0.2, Active: false},
	}
}

func TestComputeSettlementSingleCategory(t *testing.T) {
	points, commission := ComputeSettlement(4, []string{"plastic"}, rateTable())

	require.EqualValues(t, 12, points)
	require.InDelta(t, 0.4, commission, 1e-9)
}

func TestComputeSettlementFullWeightPerCategory(t *testing.T) {
	// The full weight counts against each declared category, it is not
	// apportioned across them.
	points, commission := ComputeSettlement(4, []string{"plastic", "glass"}, rateTable())

	require.EqualValues(t, 4*3+4*2, points)
	require.InDelta(t, 4*0.1+4*0.05, commission, 1e-9)
}

func TestComputeSettlementInactiveRateContributesZero(t *testing.T) {
	points, commission := ComputeSettlement(10, []string{"metal"}, rateTable())

	require.Zero(t, points)
	require.Zero(t, commission)
}

func TestComputeSettlementUnknownCategoryContributesZero(t *testing.T) {
	points, commission := ComputeSettlement(10, []string{"organic"}, rateTable())

	require.Zero(t, points)
	require.Zero(t, commission)
}

func TestComputeSettlementRoundsHalfUpAfterSummation(t *testing.T) {
	rates := map[string]model.WasteRate{
		"paper": {Category: "paper", PointsPerKg: 1, CommissionRate: 0, Active: true},
	}

	points, _ := ComputeSettlement(2.5, []string{"paper"}, rates)
	require.EqualValues(t, 3, points)

	points, _ = ComputeSettlement(2.4, []string{"paper"}, rates)
	require.EqualValues(t, 2, points)
}

func TestComputeSettlementEmptyTable(t *testing.T) {
	points, commission := ComputeSettlement(7, []string{"plastic"}, map[string]model.WasteRate{})

	require.Zero(t, points)
	require.Zero(t, commission)
}
