package ports

import (
	"context"

	"waste-collect/internal/admin-service/core/domain/dto"
	"waste-collect/internal/admin-service/core/domain/model"
	"waste-collect/internal/identity"
)

type IAdminService interface {
	GetDriverPerformance(ctx context.Context, ident identity.Identity, driverID string) ([]model.DriverDailyPerformance, error)
	GetSystemOverview(ctx context.Context, ident identity.Identity) (dto.SystemOverview, error)
	UpdateDriverRating(ctx context.Context, ident identity.Identity, driverID, day string, rating float64) (model.DriverDailyPerformance, error)
}
