package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"waste-collect/internal/identity"
	"waste-collect/internal/mylogger"
	"waste-collect/internal/rewards-service/adapters/driven/memstore"
	"waste-collect/internal/rewards-service/core/domain/model"
	"waste-collect/internal/rewards-service/core/myerrors"
	"waste-collect/internal/rewards-service/core/services"
)

var (
	citizen = identity.Identity{UserID: "citizen-1", Role: identity.RoleCitizen}
	admin   = identity.Identity{UserID: "admin-1", Role: identity.RoleAdmin}
)

func newTestService(t *testing.T) (*services.RewardsService, *memstore.Store) {
	t.Helper()

	store := memstore.New()
	store.SeedItem(model.RewardItem{ID: "item-mug", Name: "Recycled Mug", CostPoints: 100, Stock: 5, Active: true})
	store.SeedItem(model.RewardItem{ID: "item-bag", Name: "Tote Bag", CostPoints: 150, Stock: 1, Active: true})
	store.SeedItem(model.RewardItem{ID: "item-old", Name: "Retired Poster", CostPoints: 10, Stock: 3, Active: false})

	log, err := mylogger.New(mylogger.LevelError)
	require.NoError(t, err)

	return services.NewRewardsService(log, store, store, store), store
}

func TestCreditAndBalance(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, citizen.UserID, 40, "pickup:PCK_1"))
	require.NoError(t, svc.Credit(ctx, citizen.UserID, 60, "pickup:PCK_2"))

	balance, err := svc.Balance(ctx, citizen.UserID)
	require.NoError(t, err)
	require.Equal(t, int64(100), balance)
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.ErrorIs(t, svc.Credit(ctx, citizen.UserID, 0, "x"), myerrors.ErrValidation)
	require.ErrorIs(t, svc.Credit(ctx, citizen.UserID, -5, "x"), myerrors.ErrValidation)

	balance, err := svc.Balance(ctx, citizen.UserID)
	require.NoError(t, err)
	require.Zero(t, balance)
}

func TestBalanceOfUnknownUserIsZero(t *testing.T) {
	svc, _ := newTestService(t)

	balance, err := svc.Balance(context.Background(), "nobody")
	require.NoError(t, err)
	require.Zero(t, balance)
}

func TestRedeem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, citizen.UserID, 250, "pickup:PCK_1"))

	redemption, balanceAfter, err := svc.Redeem(ctx, citizen, "item-mug")
	require.NoError(t, err)
	require.Equal(t, model.RedemptionPending, redemption.Status)
	require.Equal(t, int64(100), redemption.CostPoints)
	require.Equal(t, "Recycled Mug", redemption.ItemName)
	require.Equal(t, int64(150), balanceAfter)

	entries, err := svc.Ledger(ctx, citizen)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, model.EntrySpent, entries[0].EntryType)
	require.Equal(t, "redemption:"+redemption.ID, entries[0].Reference)
}

func TestRedeemInsufficientBalance(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, citizen.UserID, 100, "pickup:PCK_1"))

	// the tote bag costs 150, the balance only covers 100
	_, _, err := svc.Redeem(ctx, citizen, "item-bag")
	require.ErrorIs(t, err, myerrors.ErrInsufficientBalance)

	// nothing moved: balance, stock and ledger are untouched
	balance, err := svc.Balance(ctx, citizen.UserID)
	require.NoError(t, err)
	require.Equal(t, int64(100), balance)

	item, err := store.GetItem(ctx, "item-bag")
	require.NoError(t, err)
	require.Equal(t, int64(1), item.Stock)

	entries, err := svc.Ledger(ctx, citizen)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRedeemOutOfStock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, citizen.UserID, 1000, "pickup:PCK_1"))

	_, _, err := svc.Redeem(ctx, citizen, "item-bag")
	require.NoError(t, err)

	// stock is exhausted, a paying customer is still refused
	_, _, err = svc.Redeem(ctx, citizen, "item-bag")
	require.ErrorIs(t, err, myerrors.ErrOutOfStock)

	balance, err := svc.Balance(ctx, citizen.UserID)
	require.NoError(t, err)
	require.Equal(t, int64(850), balance)
}

func TestRedeemInactiveItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, citizen.UserID, 1000, "pickup:PCK_1"))

	_, _, err := svc.Redeem(ctx, citizen, "item-old")
	require.ErrorIs(t, err, myerrors.ErrOutOfStock)
}

func TestRedeemUnknownItem(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Redeem(context.Background(), citizen, "item-missing")
	require.ErrorIs(t, err, myerrors.ErrNotFound)
}

func TestRedeemConcurrentLastUnit(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	const contenders = 16
	users := make([]identity.Identity, contenders)
	for i := range users {
		users[i] = identity.Identity{UserID: string(rune('a'+i)) + "-citizen", Role: identity.RoleCitizen}
		require.NoError(t, svc.Credit(ctx, users[i].UserID, 200, "seed"))
	}

	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for _, u := range users {
		wg.Add(1)
		go func(u identity.Identity) {
			defer wg.Done()
			_, _, err := svc.Redeem(ctx, u, "item-bag")
			results <- err
		}(u)
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, myerrors.ErrOutOfStock)
			losses++
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, contenders-1, losses)

	item, err := store.GetItem(ctx, "item-bag")
	require.NoError(t, err)
	require.Zero(t, item.Stock)
}

func TestConcurrentRedeemsSameUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// 150 points, five goroutines each trying a 100 point mug: exactly one
	// can be funded
	require.NoError(t, svc.Credit(ctx, citizen.UserID, 150, "seed"))

	var wg sync.WaitGroup
	results := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.Redeem(ctx, citizen, "item-mug")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, myerrors.ErrInsufficientBalance)
		}
	}
	require.Equal(t, 1, wins)

	balance, err := svc.Balance(ctx, citizen.UserID)
	require.NoError(t, err)
	require.Equal(t, int64(50), balance)
}

func TestGetRedemptionOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, citizen.UserID, 200, "seed"))
	redemption, _, err := svc.Redeem(ctx, citizen, "item-mug")
	require.NoError(t, err)

	got, err := svc.GetRedemption(ctx, citizen, redemption.ID)
	require.NoError(t, err)
	require.Equal(t, redemption.ID, got.ID)

	_, err = svc.GetRedemption(ctx, admin, redemption.ID)
	require.NoError(t, err)

	stranger := identity.Identity{UserID: "citizen-9", Role: identity.RoleCitizen}
	_, err = svc.GetRedemption(ctx, stranger, redemption.ID)
	require.ErrorIs(t, err, myerrors.ErrForbidden)
}

func TestAdvanceRedemption(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, citizen.UserID, 200, "seed"))
	redemption, _, err := svc.Redeem(ctx, citizen, "item-mug")
	require.NoError(t, err)

	processed, err := svc.AdvanceRedemption(ctx, admin, redemption.ID, model.RedemptionProcessed)
	require.NoError(t, err)
	require.Equal(t, model.RedemptionProcessed, processed.Status)

	delivered, err := svc.AdvanceRedemption(ctx, admin, redemption.ID, model.RedemptionDelivered)
	require.NoError(t, err)
	require.Equal(t, model.RedemptionDelivered, delivered.Status)
}

func TestAdvanceRedemptionGuards(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, citizen.UserID, 200, "seed"))
	redemption, _, err := svc.Redeem(ctx, citizen, "item-mug")
	require.NoError(t, err)

	t.Run("skipping a step", func(t *testing.T) {
		_, err := svc.AdvanceRedemption(ctx, admin, redemption.ID, model.RedemptionDelivered)
		require.ErrorIs(t, err, myerrors.ErrStateConflict)
	})

	t.Run("moving backwards", func(t *testing.T) {
		_, err := svc.AdvanceRedemption(ctx, admin, redemption.ID, model.RedemptionPending)
		require.ErrorIs(t, err, myerrors.ErrStateConflict)
	})

	t.Run("non-admin", func(t *testing.T) {
		_, err := svc.AdvanceRedemption(ctx, citizen, redemption.ID, model.RedemptionProcessed)
		require.ErrorIs(t, err, myerrors.ErrForbidden)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := svc.AdvanceRedemption(ctx, admin, redemption.ID, model.RedemptionStatus("SHIPPED"))
		require.ErrorIs(t, err, myerrors.ErrValidation)
	})
}

func TestListRewardsOnlyActive(t *testing.T) {
	svc, _ := newTestService(t)

	items, err := svc.ListRewards(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		require.True(t, item.Active)
	}
}
