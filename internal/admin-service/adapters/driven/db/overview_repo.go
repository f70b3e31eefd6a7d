package db

import (
	"context"
	"fmt"

	"waste-collect/internal/admin-service/core/domain/dto"
)

type OverviewRepo struct {
	db *DB
}

func NewOverviewRepo(db *DB) *OverviewRepo {
	return &OverviewRepo{db: db}
}

func (or *OverviewRepo) PickupCounts(ctx context.Context) (dto.PickupCounts, error) {
	var counts dto.PickupCounts
	err := or.db.GetConn().QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'SCHEDULED'),
			COUNT(*) FILTER (WHERE status = 'ASSIGNED'),
			COUNT(*) FILTER (WHERE status IN ('EN_ROUTE', 'ARRIVED', 'COLLECTING')),
			COUNT(*) FILTER (WHERE status = 'COMPLETED'),
			COUNT(*) FILTER (WHERE status = 'CANCELLED')
		FROM pickups`,
	).Scan(&counts.Scheduled, &counts.Assigned, &counts.InProgress, &counts.Completed, &counts.Cancelled)
	if err != nil {
		return dto.PickupCounts{}, fmt.Errorf("count pickups: %w", err)
	}
	return counts, nil
}

func (or *OverviewRepo) PointsTotals(ctx context.Context) (dto.PointsTotals, error) {
	var totals dto.PointsTotals
	err := or.db.GetConn().QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'EARNED'), 0),
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'SPENT'), 0)
		FROM ledger_entries`,
	).Scan(&totals.Issued, &totals.Spent)
	if err != nil {
		return dto.PointsTotals{}, fmt.Errorf("sum ledger entries: %w", err)
	}
	totals.Outstanding = totals.Issued - totals.Spent
	return totals, nil
}

func (or *OverviewRepo) CommissionTotal(ctx context.Context) (float64, error) {
	var total float64
	err := or.db.GetConn().QueryRow(ctx, `
		SELECT COALESCE(SUM(commission_amount), 0)::float
		FROM pickups
		WHERE status = 'COMPLETED'`,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum commission: %w", err)
	}
	return total, nil
}

func (or *OverviewRepo) TopDrivers(ctx context.Context, limit int) ([]dto.TopDriverEntry, error) {
	rows, err := or.db.GetConn().Query(ctx, `
		SELECT driver_id, SUM(pickups_completed), SUM(commission_earned)::float
		FROM driver_daily_performance
		GROUP BY driver_id
		ORDER BY SUM(pickups_completed) DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query top drivers: %w", err)
	}
	defer rows.Close()

	var out []dto.TopDriverEntry
	for rows.Next() {
		var entry dto.TopDriverEntry
		if err := rows.Scan(&entry.DriverID, &entry.PickupsCompleted, &entry.CommissionEarned); err != nil {
			return nil, fmt.Errorf("scan top driver: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
