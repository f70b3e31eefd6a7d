package ports

import (
	"context"

	"waste-collect/internal/admin-service/core/domain/dto"
	"waste-collect/internal/admin-service/core/domain/model"
)

type IPerformanceRepo interface {
	// ListForDriver returns daily rows newest first.
	ListForDriver(ctx context.Context, driverID string) ([]model.DriverDailyPerformance, error)
	// UpdateRating writes the externally computed rating onto one daily row.
	UpdateRating(ctx context.Context, driverID, day string, rating float64) (model.DriverDailyPerformance, error)
}

type IOverviewRepo interface {
	PickupCounts(ctx context.Context) (dto.PickupCounts, error)
	PointsTotals(ctx context.Context) (dto.PointsTotals, error)
	CommissionTotal(ctx context.Context) (float64, error)
	TopDrivers(ctx context.Context, limit int) ([]dto.TopDriverEntry, error)
}
