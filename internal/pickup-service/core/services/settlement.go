package services

import (
	"math"

	"waste-collect/internal/pickup-service/core/domain/model"
)

// ComputeSettlement converts a completed pickup's actual weight and declared
// categories into points and driver commission using the active rate table.
//
// The full actual weight is applied against each declared category; weight is
// not apportioned across categories. A declared category without an active
// rate contributes zero. Points are rounded half-up to an integer after
// summation; commission stays a currency amount.
func ComputeSettlement(actualWeightKg float64, categories []string, rates map[string]model.WasteRate) (int64, float64) {
	var points float64
	var commission float64

	for _, category := range categories {
		rate, ok := rates[category]
		if !ok || !rate.Active {
			continue
		}
		points += actualWeightKg * rate.PointsPerKg
		commission += actualWeightKg * rate.CommissionRate
	}

	return int64(math.Floor(points + 0.5)), commission
}
