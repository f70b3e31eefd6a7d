package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"waste-collect/internal/admin-service/core/domain/dto"
	"waste-collect/internal/admin-service/core/domain/model"
	"waste-collect/internal/admin-service/core/myerrors"
	"waste-collect/internal/admin-service/core/services"
	"waste-collect/internal/identity"
	"waste-collect/internal/mylogger"
)

var (
	admin  = identity.Identity{UserID: "admin-1", Role: identity.RoleAdmin}
	driver = identity.Identity{UserID: "driver-1", Role: identity.RoleDriver}
)

type fakePerformanceRepo struct {
	rows map[string][]model.DriverDailyPerformance
}

func (f *fakePerformanceRepo) ListForDriver(ctx context.Context, driverID string) ([]model.DriverDailyPerformance, error) {
	return f.rows[driverID], nil
}

func (f *fakePerformanceRepo) UpdateRating(ctx context.Context, driverID, day string, rating float64) (model.DriverDailyPerformance, error) {
	for i, row := range f.rows[driverID] {
		if row.Day == day {
			f.rows[driverID][i].AverageRating = rating
			return f.rows[driverID][i], nil
		}
	}
	return model.DriverDailyPerformance{}, fmt.Errorf("%w: no performance row for %s on %s", myerrors.ErrNotFound, driverID, day)
}

type fakeOverviewRepo struct {
	pickups dto.PickupCounts
	points  dto.PointsTotals
}

func (f *fakeOverviewRepo) PickupCounts(ctx context.Context) (dto.PickupCounts, error) {
	return f.pickups, nil
}

func (f *fakeOverviewRepo) PointsTotals(ctx context.Context) (dto.PointsTotals, error) {
	return f.points, nil
}

func (f *fakeOverviewRepo) CommissionTotal(ctx context.Context) (float64, error) {
	return 12.5, nil
}

func (f *fakeOverviewRepo) TopDrivers(ctx context.Context, limit int) ([]dto.TopDriverEntry, error) {
	return []dto.TopDriverEntry{{DriverID: driver.UserID, PickupsCompleted: 3, CommissionEarned: 12.5}}, nil
}

func newTestService(t *testing.T) (*services.AdminService, *fakePerformanceRepo) {
	t.Helper()

	perf := &fakePerformanceRepo{rows: map[string][]model.DriverDailyPerformance{
		driver.UserID: {
			{DriverID: driver.UserID, Day: "2026-08-30", PickupsCompleted: 2, TotalWeightKg: 9, CommissionEarned: 8.0},
			{DriverID: driver.UserID, Day: "2026-08-29", PickupsCompleted: 1, TotalWeightKg: 4, CommissionEarned: 4.5},
		},
	}}
	overview := &fakeOverviewRepo{
		pickups: dto.PickupCounts{Scheduled: 2, Assigned: 1, Completed: 3, Cancelled: 1},
		points:  dto.PointsTotals{Issued: 300, Spent: 100},
	}

	log, err := mylogger.New(mylogger.LevelError)
	require.NoError(t, err)

	return services.NewAdminService(log, perf, overview), perf
}

func TestGetDriverPerformance(t *testing.T) {
	svc, _ := newTestService(t)

	rows, err := svc.GetDriverPerformance(context.Background(), admin, driver.UserID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(2), rows[0].PickupsCompleted)
}

func TestDriverReadsOwnPerformance(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetDriverPerformance(ctx, driver, driver.UserID)
	require.NoError(t, err)

	_, err = svc.GetDriverPerformance(ctx, driver, "driver-2")
	require.ErrorIs(t, err, myerrors.ErrForbidden)
}

func TestGetSystemOverview(t *testing.T) {
	svc, _ := newTestService(t)

	overview, err := svc.GetSystemOverview(context.Background(), admin)
	require.NoError(t, err)
	require.Equal(t, int64(3), overview.Pickups.Completed)
	require.Equal(t, int64(300), overview.Points.Issued)
	require.Equal(t, 12.5, overview.CommissionTotal)
	require.NotEmpty(t, overview.Timestamp)
	require.Len(t, overview.TopDrivers, 1)
}

func TestSystemOverviewAdminOnly(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetSystemOverview(context.Background(), driver)
	require.ErrorIs(t, err, myerrors.ErrForbidden)
}

func TestUpdateDriverRating(t *testing.T) {
	svc, perf := newTestService(t)

	row, err := svc.UpdateDriverRating(context.Background(), admin, driver.UserID, "2026-08-30", 4.7)
	require.NoError(t, err)
	require.Equal(t, 4.7, row.AverageRating)
	require.Equal(t, 4.7, perf.rows[driver.UserID][0].AverageRating)
}

func TestUpdateDriverRatingGuards(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("non-admin", func(t *testing.T) {
		_, err := svc.UpdateDriverRating(ctx, driver, driver.UserID, "2026-08-30", 4.0)
		require.ErrorIs(t, err, myerrors.ErrForbidden)
	})

	t.Run("rating out of range", func(t *testing.T) {
		_, err := svc.UpdateDriverRating(ctx, admin, driver.UserID, "2026-08-30", 5.5)
		require.ErrorIs(t, err, myerrors.ErrValidation)
	})

	t.Run("bad day", func(t *testing.T) {
		_, err := svc.UpdateDriverRating(ctx, admin, driver.UserID, "yesterday", 4.0)
		require.ErrorIs(t, err, myerrors.ErrValidation)
	})

	t.Run("missing row", func(t *testing.T) {
		_, err := svc.UpdateDriverRating(ctx, admin, driver.UserID, "2026-01-01", 4.0)
		require.ErrorIs(t, err, myerrors.ErrNotFound)
	})
}
