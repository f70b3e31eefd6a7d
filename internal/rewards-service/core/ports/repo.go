package ports

import (
	"context"

	"waste-collect/internal/rewards-service/core/domain/model"
)

type ILedgerRepo interface {
	// Credit appends an EARNED entry and bumps the materialized balance.
	Credit(ctx context.Context, userID string, amount int64, reference string) (model.LedgerEntry, error)
	// Debit appends a SPENT entry and lowers the balance, failing with
	// ErrInsufficientBalance when the balance cannot cover the amount.
	Debit(ctx context.Context, userID string, amount int64, reference string) (model.LedgerEntry, error)
	Balance(ctx context.Context, userID string) (int64, error)
	Entries(ctx context.Context, userID string) ([]model.LedgerEntry, error)
}

type ICatalogRepo interface {
	ListActive(ctx context.Context) ([]model.RewardItem, error)
	GetItem(ctx context.Context, itemID string) (model.RewardItem, error)
}

type IRedemptionRepo interface {
	// Redeem performs the whole exchange in one transaction: stock down by
	// one, SPENT ledger entry, balance down by the item cost, PENDING
	// redemption row. On any precondition failure nothing is written. The
	// returned int64 is the balance after the spend.
	Redeem(ctx context.Context, userID, itemID string) (model.Redemption, int64, error)
	GetByID(ctx context.Context, redemptionID string) (model.Redemption, error)
	// AdvanceStatus moves a redemption one step forward, guarded on the
	// expected current status.
	AdvanceStatus(ctx context.Context, redemptionID string, from, to model.RedemptionStatus) (model.Redemption, error)
}
