package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"waste-collect/internal/identity"
	"waste-collect/internal/metrics"
	"waste-collect/internal/mylogger"
	"waste-collect/internal/rewards-service/core/domain/model"
	"waste-collect/internal/rewards-service/core/myerrors"
	"waste-collect/internal/rewards-service/core/ports"
)

const opTimeout = 15 * time.Second

// userLocks hands out one mutex per user so debits for the same user are
// serialized in-process. The repository guards still hold on their own; the
// lock keeps concurrent spends from burning round trips on doomed
// transactions.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (u *userLocks) get(userID string) *sync.Mutex {
	u.mu.Lock()
	defer u.mu.Unlock()
	l, ok := u.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		u.locks[userID] = l
	}
	return l
}

type RewardsService struct {
	mylog          mylogger.Logger
	ledgerRepo     ports.ILedgerRepo
	catalogRepo    ports.ICatalogRepo
	redemptionRepo ports.IRedemptionRepo
	locks          *userLocks
}

func NewRewardsService(mylog mylogger.Logger, ledgerRepo ports.ILedgerRepo, catalogRepo ports.ICatalogRepo, redemptionRepo ports.IRedemptionRepo) *RewardsService {
	return &RewardsService{
		mylog:          mylog,
		ledgerRepo:     ledgerRepo,
		catalogRepo:    catalogRepo,
		redemptionRepo: redemptionRepo,
		locks:          &userLocks{locks: make(map[string]*sync.Mutex)},
	}
}

func (rs *RewardsService) Balance(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return rs.ledgerRepo.Balance(ctx, userID)
}

func (rs *RewardsService) Ledger(ctx context.Context, ident identity.Identity) ([]model.LedgerEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return rs.ledgerRepo.Entries(ctx, ident.UserID)
}

// Credit records points earned outside the redemption flow, typically a
// pickup settlement. Amount must be positive. The issued-points counter is
// owned by the settlement path, which already accounts for this credit.
func (rs *RewardsService) Credit(ctx context.Context, userID string, amount int64, reference string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if amount <= 0 {
		return myerrors.ErrInvalidAmount
	}

	if _, err := rs.ledgerRepo.Credit(ctx, userID, amount, reference); err != nil {
		return fmt.Errorf("credit %s: %w", userID, err)
	}
	return nil
}

func (rs *RewardsService) ListRewards(ctx context.Context) ([]model.RewardItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return rs.catalogRepo.ListActive(ctx)
}

func (rs *RewardsService) Redeem(ctx context.Context, ident identity.Identity, itemID string) (model.Redemption, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	log := rs.mylog.Action("Redeem")

	if ident.IsAdmin() {
		return model.Redemption{}, 0, fmt.Errorf("%w: admins do not redeem rewards", myerrors.ErrForbidden)
	}
	if itemID == "" {
		return model.Redemption{}, 0, fmt.Errorf("%w: item id required", myerrors.ErrValidation)
	}

	lock := rs.locks.get(ident.UserID)
	lock.Lock()
	defer lock.Unlock()

	redemption, balanceAfter, err := rs.redemptionRepo.Redeem(ctx, ident.UserID, itemID)
	if err != nil {
		metrics.Redemptions.WithLabelValues(outcomeFor(err)).Inc()
		return model.Redemption{}, 0, err
	}

	metrics.Redemptions.WithLabelValues("ok").Inc()
	metrics.PointsSpent.Add(float64(redemption.CostPoints))
	log.Info("reward redeemed",
		"redemption_id", redemption.ID,
		"user_id", ident.UserID,
		"item_id", itemID,
		"cost_points", redemption.CostPoints,
		"balance_after", balanceAfter,
	)
	return redemption, balanceAfter, nil
}

func (rs *RewardsService) GetRedemption(ctx context.Context, ident identity.Identity, redemptionID string) (model.Redemption, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	r, err := rs.redemptionRepo.GetByID(ctx, redemptionID)
	if err != nil {
		return model.Redemption{}, err
	}
	if !ident.IsAdmin() && ident.UserID != r.UserID {
		return model.Redemption{}, fmt.Errorf("%w: not your redemption", myerrors.ErrForbidden)
	}
	return r, nil
}

// AdvanceRedemption moves fulfilment forward. Admin only, one step at a time.
func (rs *RewardsService) AdvanceRedemption(ctx context.Context, ident identity.Identity, redemptionID string, next model.RedemptionStatus) (model.Redemption, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	log := rs.mylog.Action("AdvanceRedemption")

	if !ident.IsAdmin() {
		return model.Redemption{}, fmt.Errorf("%w: only admins progress redemptions", myerrors.ErrForbidden)
	}
	if !next.Valid() {
		return model.Redemption{}, fmt.Errorf("%w: unknown redemption status %q", myerrors.ErrValidation, next)
	}

	current, err := rs.redemptionRepo.GetByID(ctx, redemptionID)
	if err != nil {
		return model.Redemption{}, err
	}
	if !model.CanAdvanceRedemption(current.Status, next) {
		return model.Redemption{}, fmt.Errorf("%w: cannot move redemption from %s to %s", myerrors.ErrStateConflict, current.Status, next)
	}

	updated, err := rs.redemptionRepo.AdvanceStatus(ctx, redemptionID, current.Status, next)
	if err != nil {
		return model.Redemption{}, err
	}

	log.Info("redemption advanced", "redemption_id", redemptionID, "from", current.Status, "to", next)
	return updated, nil
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, myerrors.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, myerrors.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, myerrors.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
