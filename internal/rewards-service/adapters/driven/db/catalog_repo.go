package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"waste-collect/internal/rewards-service/core/domain/model"
	"waste-collect/internal/rewards-service/core/myerrors"
)

const itemColumns = `item_id, name, description, cost_points, stock, active`

type CatalogRepo struct {
	db *DB
}

func NewCatalogRepo(db *DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (cr *CatalogRepo) ListActive(ctx context.Context) ([]model.RewardItem, error) {
	rows, err := cr.db.GetConn().Query(ctx, `
		SELECT `+itemColumns+`
		FROM reward_items
		WHERE active
		ORDER BY cost_points`,
	)
	if err != nil {
		return nil, fmt.Errorf("list reward items: %w", err)
	}
	defer rows.Close()

	var out []model.RewardItem
	for rows.Next() {
		var item model.RewardItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.CostPoints, &item.Stock, &item.Active); err != nil {
			return nil, fmt.Errorf("scan reward item: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (cr *CatalogRepo) GetItem(ctx context.Context, itemID string) (model.RewardItem, error) {
	var item model.RewardItem
	err := cr.db.GetConn().QueryRow(ctx,
		`SELECT `+itemColumns+` FROM reward_items WHERE item_id = $1`, itemID,
	).Scan(&item.ID, &item.Name, &item.Description, &item.CostPoints, &item.Stock, &item.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.RewardItem{}, fmt.Errorf("%w: reward item %s", myerrors.ErrNotFound, itemID)
	}
	if err != nil {
		return model.RewardItem{}, fmt.Errorf("read reward item: %w", err)
	}
	return item, nil
}
