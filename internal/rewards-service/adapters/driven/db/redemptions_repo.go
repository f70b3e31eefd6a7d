package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"waste-collect/internal/rewards-service/core/domain/model"
	"waste-collect/internal/rewards-service/core/myerrors"
)

const redemptionColumns = `redemption_id, user_id, item_id, item_name, cost_points, status, created_at`

type RedemptionsRepo struct {
	db *DB
}

func NewRedemptionsRepo(db *DB) *RedemptionsRepo {
	return &RedemptionsRepo{db: db}
}

// Redeem exchanges points for one unit of stock in a single transaction. The
// item row is locked first so concurrent redemptions of the last unit queue
// up and all but one see the stock gone.
func (rr *RedemptionsRepo) Redeem(ctx context.Context, userID, itemID string) (model.Redemption, int64, error) {
	conn := rr.db.GetConn()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return model.Redemption{}, 0, fmt.Errorf("begin redeem tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var item model.RewardItem
	err = tx.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM reward_items WHERE item_id = $1 FOR UPDATE`, itemID,
	).Scan(&item.ID, &item.Name, &item.Description, &item.CostPoints, &item.Stock, &item.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Redemption{}, 0, fmt.Errorf("%w: reward item %s", myerrors.ErrNotFound, itemID)
	}
	if err != nil {
		return model.Redemption{}, 0, fmt.Errorf("lock reward item: %w", err)
	}
	if !item.Available() {
		return model.Redemption{}, 0, fmt.Errorf("%w: %s", myerrors.ErrOutOfStock, item.Name)
	}

	var balanceAfter int64
	err = tx.QueryRow(ctx, `
		UPDATE balances SET balance = balance - $1
		WHERE user_id = $2 AND balance >= $1
		RETURNING balance`,
		item.CostPoints, userID,
	).Scan(&balanceAfter)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Redemption{}, 0, fmt.Errorf("%w: %s costs %d points", myerrors.ErrInsufficientBalance, item.Name, item.CostPoints)
	}
	if err != nil {
		return model.Redemption{}, 0, fmt.Errorf("debit balance: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE reward_items SET stock = stock - 1 WHERE item_id = $1`, itemID,
	); err != nil {
		return model.Redemption{}, 0, fmt.Errorf("decrement stock: %w", err)
	}

	redemptionID := uuid.NewString()
	if _, err := insertEntry(ctx, tx, userID, model.EntrySpent, item.CostPoints, "redemption:"+redemptionID); err != nil {
		return model.Redemption{}, 0, err
	}

	var r model.Redemption
	err = tx.QueryRow(ctx, `
		INSERT INTO redemptions (redemption_id, user_id, item_id, item_name, cost_points, status, created_at)
		VALUES ($1, $2, $3, $4, $5, 'PENDING', NOW())
		RETURNING `+redemptionColumns,
		redemptionID, userID, itemID, item.Name, item.CostPoints,
	).Scan(&r.ID, &r.UserID, &r.ItemID, &r.ItemName, &r.CostPoints, &r.Status, &r.CreatedAt)
	if err != nil {
		return model.Redemption{}, 0, fmt.Errorf("insert redemption: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Redemption{}, 0, fmt.Errorf("commit redeem tx: %w", err)
	}
	return r, balanceAfter, nil
}

func (rr *RedemptionsRepo) GetByID(ctx context.Context, redemptionID string) (model.Redemption, error) {
	var r model.Redemption
	err := rr.db.GetConn().QueryRow(ctx,
		`SELECT `+redemptionColumns+` FROM redemptions WHERE redemption_id = $1`, redemptionID,
	).Scan(&r.ID, &r.UserID, &r.ItemID, &r.ItemName, &r.CostPoints, &r.Status, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Redemption{}, fmt.Errorf("%w: redemption %s", myerrors.ErrNotFound, redemptionID)
	}
	if err != nil {
		return model.Redemption{}, fmt.Errorf("read redemption: %w", err)
	}
	return r, nil
}

func (rr *RedemptionsRepo) AdvanceStatus(ctx context.Context, redemptionID string, from, to model.RedemptionStatus) (model.Redemption, error) {
	var r model.Redemption
	err := rr.db.GetConn().QueryRow(ctx, `
		UPDATE redemptions SET status = $1
		WHERE redemption_id = $2 AND status = $3
		RETURNING `+redemptionColumns,
		to, redemptionID, from,
	).Scan(&r.ID, &r.UserID, &r.ItemID, &r.ItemName, &r.CostPoints, &r.Status, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the row vanished or another admin moved it first.
		if _, getErr := rr.GetByID(ctx, redemptionID); getErr != nil {
			return model.Redemption{}, getErr
		}
		return model.Redemption{}, fmt.Errorf("%w: redemption %s is no longer %s", myerrors.ErrStateConflict, redemptionID, from)
	}
	if err != nil {
		return model.Redemption{}, fmt.Errorf("advance redemption: %w", err)
	}
	return r, nil
}
