package db

import (
	"context"

	"waste-collect/internal/pickup-service/core/domain/model"
	"waste-collect/internal/pickup-service/core/ports"
)

type RatesRepo struct {
	db *DB
}

func NewRatesRepo(db *DB) ports.IRatesRepo {
	return &RatesRepo{db: db}
}

func (rr *RatesRepo) ActiveRates(ctx context.Context) (map[string]model.WasteRate, error) {
	q := `
	SELECT
		category,
		points_per_kg,
		commission_rate,
		active
	FROM waste_rates
	WHERE active`

	rows, err := rr.db.conn.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rates := make(map[string]model.WasteRate)
	for rows.Next() {
		var r model.WasteRate
		if err := rows.Scan(&r.Category, &r.PointsPerKg, &r.CommissionRate, &r.Active); err != nil {
			return nil, err
		}
		rates[r.Category] = r
	}
	return rates, rows.Err()
}
