package services

import (
	"context"
	"fmt"
	"time"

	"waste-collect/internal/admin-service/core/domain/dto"
	"waste-collect/internal/admin-service/core/domain/model"
	"waste-collect/internal/admin-service/core/myerrors"
	"waste-collect/internal/admin-service/core/ports"
	"waste-collect/internal/identity"
	"waste-collect/internal/mylogger"
)

const opTimeout = 15 * time.Second

const topDriverLimit = 10

type AdminService struct {
	mylog           mylogger.Logger
	performanceRepo ports.IPerformanceRepo
	overviewRepo    ports.IOverviewRepo
}

func NewAdminService(mylog mylogger.Logger, performanceRepo ports.IPerformanceRepo, overviewRepo ports.IOverviewRepo) *AdminService {
	return &AdminService{
		mylog:           mylog,
		performanceRepo: performanceRepo,
		overviewRepo:    overviewRepo,
	}
}

// GetDriverPerformance returns the daily aggregates for one driver. Drivers
// may read their own history, admins anyone's.
func (as *AdminService) GetDriverPerformance(ctx context.Context, ident identity.Identity, driverID string) ([]model.DriverDailyPerformance, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if !ident.IsAdmin() && ident.UserID != driverID {
		return nil, fmt.Errorf("%w: cannot read another driver's performance", myerrors.ErrForbidden)
	}
	return as.performanceRepo.ListForDriver(ctx, driverID)
}

func (as *AdminService) GetSystemOverview(ctx context.Context, ident identity.Identity) (dto.SystemOverview, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if !ident.IsAdmin() {
		return dto.SystemOverview{}, fmt.Errorf("%w: overview is admin only", myerrors.ErrForbidden)
	}

	pickups, err := as.overviewRepo.PickupCounts(ctx)
	if err != nil {
		return dto.SystemOverview{}, fmt.Errorf("pickup counts: %w", err)
	}
	points, err := as.overviewRepo.PointsTotals(ctx)
	if err != nil {
		return dto.SystemOverview{}, fmt.Errorf("points totals: %w", err)
	}
	commission, err := as.overviewRepo.CommissionTotal(ctx)
	if err != nil {
		return dto.SystemOverview{}, fmt.Errorf("commission total: %w", err)
	}
	topDrivers, err := as.overviewRepo.TopDrivers(ctx, topDriverLimit)
	if err != nil {
		return dto.SystemOverview{}, fmt.Errorf("top drivers: %w", err)
	}

	return dto.SystemOverview{
		Timestamp:       time.Now().Format(time.RFC3339),
		Pickups:         pickups,
		Points:          points,
		CommissionTotal: commission,
		TopDrivers:      topDrivers,
	}, nil
}

func (as *AdminService) UpdateDriverRating(ctx context.Context, ident identity.Identity, driverID, day string, rating float64) (model.DriverDailyPerformance, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	log := as.mylog.Action("UpdateDriverRating")

	if !ident.IsAdmin() {
		return model.DriverDailyPerformance{}, fmt.Errorf("%w: ratings are written by admins", myerrors.ErrForbidden)
	}
	if rating < 0 || rating > 5 {
		return model.DriverDailyPerformance{}, fmt.Errorf("%w: rating must be between 0 and 5", myerrors.ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return model.DriverDailyPerformance{}, fmt.Errorf("%w: day must be YYYY-MM-DD", myerrors.ErrValidation)
	}

	row, err := as.performanceRepo.UpdateRating(ctx, driverID, day, rating)
	if err != nil {
		return model.DriverDailyPerformance{}, err
	}

	log.Info("driver rating updated", "driver_id", driverID, "day", day, "rating", rating)
	return row, nil
}
