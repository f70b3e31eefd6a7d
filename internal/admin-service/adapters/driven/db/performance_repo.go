package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"waste-collect/internal/admin-service/core/domain/model"
	"waste-collect/internal/admin-service/core/myerrors"
)

type PerformanceRepo struct {
	db *DB
}

func NewPerformanceRepo(db *DB) *PerformanceRepo {
	return &PerformanceRepo{db: db}
}

func (pr *PerformanceRepo) ListForDriver(ctx context.Context, driverID string) ([]model.DriverDailyPerformance, error) {
	rows, err := pr.db.GetConn().Query(ctx, `
		SELECT driver_id, day::text, pickups_completed, total_weight_kg, commission_earned, COALESCE(average_rating, 0)
		FROM driver_daily_performance
		WHERE driver_id = $1
		ORDER BY day DESC`,
		driverID,
	)
	if err != nil {
		return nil, fmt.Errorf("list driver performance: %w", err)
	}
	defer rows.Close()

	var out []model.DriverDailyPerformance
	for rows.Next() {
		var p model.DriverDailyPerformance
		if err := rows.Scan(&p.DriverID, &p.Day, &p.PickupsCompleted, &p.TotalWeightKg, &p.CommissionEarned, &p.AverageRating); err != nil {
			return nil, fmt.Errorf("scan driver performance: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (pr *PerformanceRepo) UpdateRating(ctx context.Context, driverID, day string, rating float64) (model.DriverDailyPerformance, error) {
	var p model.DriverDailyPerformance
	err := pr.db.GetConn().QueryRow(ctx, `
		UPDATE driver_daily_performance SET average_rating = $1
		WHERE driver_id = $2 AND day = $3::date
		RETURNING driver_id, day::text, pickups_completed, total_weight_kg, commission_earned, COALESCE(average_rating, 0)`,
		rating, driverID, day,
	).Scan(&p.DriverID, &p.Day, &p.PickupsCompleted, &p.TotalWeightKg, &p.CommissionEarned, &p.AverageRating)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.DriverDailyPerformance{}, fmt.Errorf("%w: no performance row for %s on %s", myerrors.ErrNotFound, driverID, day)
	}
	if err != nil {
		return model.DriverDailyPerformance{}, fmt.Errorf("update rating: %w", err)
	}
	return p, nil
}
