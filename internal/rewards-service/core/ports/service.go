package ports

import (
	"context"

	"waste-collect/internal/identity"
	"waste-collect/internal/rewards-service/core/domain/model"
)

type IRewardsService interface {
	Balance(ctx context.Context, userID string) (int64, error)
	Ledger(ctx context.Context, ident identity.Identity) ([]model.LedgerEntry, error)
	Credit(ctx context.Context, userID string, amount int64, reference string) error
	ListRewards(ctx context.Context) ([]model.RewardItem, error)
	Redeem(ctx context.Context, ident identity.Identity, itemID string) (model.Redemption, int64, error)
	GetRedemption(ctx context.Context, ident identity.Identity, redemptionID string) (model.Redemption, error)
	AdvanceRedemption(ctx context.Context, ident identity.Identity, redemptionID string, next model.RedemptionStatus) (model.Redemption, error)
}
