package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"waste-collect/internal/identity"
	"waste-collect/internal/metrics"
	"waste-collect/internal/mylogger"
	"waste-collect/internal/pickup-service/adapters/driven/bm"
	"waste-collect/internal/pickup-service/adapters/driven/memstore"
	"waste-collect/internal/pickup-service/core/domain/dto"
	"waste-collect/internal/pickup-service/core/domain/model"
	"waste-collect/internal/pickup-service/core/myerrors"
	"waste-collect/internal/pickup-service/core/ports"
	"waste-collect/internal/pickup-service/core/services"
	rewardsmem "waste-collect/internal/rewards-service/adapters/driven/memstore"
	rewardsservices "waste-collect/internal/rewards-service/core/services"
)

type recordingCrediter struct {
	mu      sync.Mutex
	credits map[string]int64 // user -> total credited
	refs    []string
}

func (rc *recordingCrediter) Credit(ctx context.Context, userID string, amount int64, reference string) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.credits == nil {
		rc.credits = make(map[string]int64)
	}
	rc.credits[userID] += amount
	rc.refs = append(rc.refs, reference)
	return nil
}

var (
	citizen      = identity.Identity{UserID: "citizen-1", Role: identity.RoleCitizen}
	driver       = identity.Identity{UserID: "driver-1", Role: identity.RoleDriver}
	secondDriver = identity.Identity{UserID: "driver-2", Role: identity.RoleDriver}
)

func newTestService(t *testing.T) (ports.IPickupService, *memstore.Store, *recordingCrediter) {
	t.Helper()

	crediter := &recordingCrediter{}
	store := memstore.New(crediter)
	store.SeedRate(model.WasteRate{Category: "plastic", PointsPerKg: 3, CommissionRate: 0.1, Active: true})
	store.SeedRate(model.WasteRate{Category: "glass", PointsPerKg: 2, CommissionRate: 0.05, Active: true})

	log, err := mylogger.New(mylogger.LevelError)
	require.NoError(t, err)

	return services.NewPickupService(log, store, store, bm.NewNop()), store, crediter
}

func pickupRequest() dto.PickupRequestDto {
	address := "12 Elm Street"
	scheduledAt := time.Now().Add(24 * time.Hour).Format(time.RFC3339)
	weight := 5.0
	return dto.PickupRequestDto{
		Address:           &address,
		ScheduledAt:       &scheduledAt,
		Categories:        []string{"plastic"},
		EstimatedWeightKg: &weight,
	}
}

func requestAndAccept(t *testing.T, svc ports.IPickupService) model.Pickup {
	t.Helper()
	p, err := svc.RequestPickup(context.Background(), citizen, pickupRequest())
	require.NoError(t, err)
	accepted, err := svc.AcceptPickup(context.Background(), driver, p.ID)
	require.NoError(t, err)
	return accepted
}

func TestRequestPickup(t *testing.T) {
	svc, _, _ := newTestService(t)

	p, err := svc.RequestPickup(context.Background(), citizen, pickupRequest())
	require.NoError(t, err)

	require.NotEmpty(t, p.ID)
	require.Equal(t, model.StatusScheduled, p.Status)
	require.Equal(t, citizen.UserID, p.RequesterID)
	require.False(t, p.Assigned())
	require.Contains(t, p.PickupNumber, "PCK_")
}

func TestRequestPickupValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	t.Run("empty categories", func(t *testing.T) {
		req := pickupRequest()
		req.Categories = nil
		_, err := svc.RequestPickup(ctx, citizen, req)
		require.ErrorIs(t, err, myerrors.ErrValidation)
	})

	t.Run("blank categories", func(t *testing.T) {
		req := pickupRequest()
		req.Categories = []string{"  ", ""}
		_, err := svc.RequestPickup(ctx, citizen, req)
		require.ErrorIs(t, err, myerrors.ErrValidation)
	})

	t.Run("non-positive weight", func(t *testing.T) {
		req := pickupRequest()
		zero := 0.0
		req.EstimatedWeightKg = &zero
		_, err := svc.RequestPickup(ctx, citizen, req)
		require.ErrorIs(t, err, myerrors.ErrValidation)
	})

	t.Run("missing address", func(t *testing.T) {
		req := pickupRequest()
		req.Address = nil
		_, err := svc.RequestPickup(ctx, citizen, req)
		require.ErrorIs(t, err, myerrors.ErrValidation)
	})

	t.Run("driver cannot request", func(t *testing.T) {
		_, err := svc.RequestPickup(ctx, driver, pickupRequest())
		require.ErrorIs(t, err, myerrors.ErrForbidden)
	})
}

func TestAcceptPickup(t *testing.T) {
	svc, _, _ := newTestService(t)

	p, err := svc.RequestPickup(context.Background(), citizen, pickupRequest())
	require.NoError(t, err)

	accepted, err := svc.AcceptPickup(context.Background(), driver, p.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusAssigned, accepted.Status)
	require.Equal(t, driver.UserID, accepted.DriverID)
}

func TestAcceptPickupSecondDriverConflicts(t *testing.T) {
	svc, _, _ := newTestService(t)
	p := requestAndAccept(t, svc)

	_, err := svc.AcceptPickup(context.Background(), secondDriver, p.ID)
	require.ErrorIs(t, err, myerrors.ErrStateConflict)
}

func TestAcceptPickupConcurrentRace(t *testing.T) {
	svc, _, _ := newTestService(t)

	p, err := svc.RequestPickup(context.Background(), citizen, pickupRequest())
	require.NoError(t, err)

	const drivers = 16
	var wg sync.WaitGroup
	errs := make([]error, drivers)

	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ident := identity.Identity{UserID: string(rune('a' + i)), Role: identity.RoleDriver}
			_, errs[i] = svc.AcceptPickup(context.Background(), ident, p.ID)
		}(i)
	}
	wg.Wait()

	var winners int
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			require.ErrorIs(t, err, myerrors.ErrStateConflict)
		}
	}
	require.Equal(t, 1, winners)

	got, err := svc.GetPickup(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusAssigned, got.Status)
	require.True(t, got.Assigned())
}

func TestAdvanceStatus(t *testing.T) {
	svc, _, _ := newTestService(t)
	p := requestAndAccept(t, svc)
	ctx := context.Background()

	for _, next := range []model.Status{model.StatusEnRoute, model.StatusArrived, model.StatusCollecting} {
		advanced, err := svc.AdvanceStatus(ctx, driver, p.ID, next)
		require.NoError(t, err)
		require.Equal(t, next, advanced.Status)
	}
}

func TestAdvanceStatusRejectsBackward(t *testing.T) {
	svc, _, _ := newTestService(t)
	p := requestAndAccept(t, svc)
	ctx := context.Background()

	_, err := svc.AdvanceStatus(ctx, driver, p.ID, model.StatusArrived)
	require.NoError(t, err)

	_, err = svc.AdvanceStatus(ctx, driver, p.ID, model.StatusEnRoute)
	require.ErrorIs(t, err, myerrors.ErrStateConflict)
}

func TestAdvanceStatusRejectsForeignDriver(t *testing.T) {
	svc, _, _ := newTestService(t)
	p := requestAndAccept(t, svc)

	_, err := svc.AdvanceStatus(context.Background(), secondDriver, p.ID, model.StatusEnRoute)
	require.ErrorIs(t, err, myerrors.ErrForbidden)
}

func TestAdvanceStatusRejectsUnassigned(t *testing.T) {
	svc, _, _ := newTestService(t)

	p, err := svc.RequestPickup(context.Background(), citizen, pickupRequest())
	require.NoError(t, err)

	_, err = svc.AdvanceStatus(context.Background(), driver, p.ID, model.StatusEnRoute)
	require.ErrorIs(t, err, myerrors.ErrForbidden)
}

func TestCompletePickup(t *testing.T) {
	svc, store, crediter := newTestService(t)
	p := requestAndAccept(t, svc)
	ctx := context.Background()

	_, err := svc.AdvanceStatus(ctx, driver, p.ID, model.StatusCollecting)
	require.NoError(t, err)

	settlement, err := svc.CompletePickup(ctx, driver, p.ID, 4)
	require.NoError(t, err)
	require.EqualValues(t, 12, settlement.PointsEarned)
	require.InDelta(t, 0.4, settlement.CommissionAmount, 1e-9)
	require.EqualValues(t, 4, settlement.ActualWeightKg)

	got, err := svc.GetPickup(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, got.Status)
	require.EqualValues(t, 4, got.ActualWeightKg)
	require.EqualValues(t, 12, got.PointsEarned)
	require.False(t, got.CompletedAt.IsZero())

	// the settlement reports the timestamp that was stored, not a new one
	require.Equal(t, got.CompletedAt, settlement.CompletedAt)

	// settlement credited the requester's ledger exactly once
	require.EqualValues(t, 12, crediter.credits[citizen.UserID])
	require.Equal(t, []string{p.ID}, crediter.refs)

	// driver daily totals were bumped
	perf := store.Performance(driver.UserID, got.CompletedAt)
	require.EqualValues(t, 1, perf.PickupsCompleted)
	require.InDelta(t, 4, perf.TotalWeightKg, 1e-9)
	require.InDelta(t, 0.4, perf.CommissionEarned, 1e-9)
}

func TestSettlementCountsIssuedPointsOnce(t *testing.T) {
	log, err := mylogger.New(mylogger.LevelError)
	require.NoError(t, err)

	// Wire the real rewards service behind the settlement credit, the way
	// the simulator does, so both code paths that touch the issued-points
	// counter run in one settlement.
	rewardsStore := rewardsmem.New()
	rewards := rewardsservices.NewRewardsService(log, rewardsStore, rewardsStore, rewardsStore)

	store := memstore.New(rewards)
	store.SeedRate(model.WasteRate{Category: "plastic", PointsPerKg: 3, CommissionRate: 0.1, Active: true})
	svc := services.NewPickupService(log, store, store, bm.NewNop())

	p, err := svc.RequestPickup(context.Background(), citizen, pickupRequest())
	require.NoError(t, err)
	_, err = svc.AcceptPickup(context.Background(), driver, p.ID)
	require.NoError(t, err)

	before := testutil.ToFloat64(metrics.PointsIssued)
	settlement, err := svc.CompletePickup(context.Background(), driver, p.ID, 4)
	require.NoError(t, err)

	require.InDelta(t, float64(settlement.PointsEarned), testutil.ToFloat64(metrics.PointsIssued)-before, 1e-9)

	balance, err := rewards.Balance(context.Background(), citizen.UserID)
	require.NoError(t, err)
	require.Equal(t, settlement.PointsEarned, balance)
}

func TestCompletePickupSkippedIntermediateSteps(t *testing.T) {
	svc, _, _ := newTestService(t)
	p := requestAndAccept(t, svc)

	// complete directly from ASSIGNED
	_, err := svc.CompletePickup(context.Background(), driver, p.ID, 2)
	require.NoError(t, err)
}

func TestCompletePickupExactlyOnce(t *testing.T) {
	svc, _, crediter := newTestService(t)
	p := requestAndAccept(t, svc)
	ctx := context.Background()

	_, err := svc.CompletePickup(ctx, driver, p.ID, 4)
	require.NoError(t, err)

	_, err = svc.CompletePickup(ctx, driver, p.ID, 4)
	require.ErrorIs(t, err, myerrors.ErrStateConflict)

	require.Len(t, crediter.refs, 1)
}

func TestCompletePickupInvalidWeight(t *testing.T) {
	svc, _, crediter := newTestService(t)
	p := requestAndAccept(t, svc)

	_, err := svc.CompletePickup(context.Background(), driver, p.ID, 0)
	require.ErrorIs(t, err, myerrors.ErrValidation)

	_, err = svc.CompletePickup(context.Background(), driver, p.ID, -3)
	require.ErrorIs(t, err, myerrors.ErrValidation)

	require.Empty(t, crediter.refs)
}

func TestCompletePickupWrongState(t *testing.T) {
	svc, _, _ := newTestService(t)

	p, err := svc.RequestPickup(context.Background(), citizen, pickupRequest())
	require.NoError(t, err)

	_, err = svc.CompletePickup(context.Background(), driver, p.ID, 4)
	require.ErrorIs(t, err, myerrors.ErrStateConflict)
}

func TestCompletePickupForeignDriver(t *testing.T) {
	svc, _, _ := newTestService(t)
	p := requestAndAccept(t, svc)

	_, err := svc.CompletePickup(context.Background(), secondDriver, p.ID, 4)
	require.ErrorIs(t, err, myerrors.ErrForbidden)
}

func TestDriverCancelReleasesPickup(t *testing.T) {
	svc, _, _ := newTestService(t)
	p := requestAndAccept(t, svc)
	ctx := context.Background()

	released, err := svc.CancelPickup(ctx, driver, p.ID, "vehicle broke down")
	require.NoError(t, err)
	require.Equal(t, model.StatusScheduled, released.Status)
	require.False(t, released.Assigned())
	require.Equal(t, "vehicle broke down", released.CancellationReason)

	// the same pickup goes back into the pool and another driver can take it
	accepted, err := svc.AcceptPickup(ctx, secondDriver, p.ID)
	require.NoError(t, err)
	require.Equal(t, secondDriver.UserID, accepted.DriverID)
	require.Equal(t, model.StatusAssigned, accepted.Status)
}

func TestRequesterCancelIsTerminal(t *testing.T) {
	svc, _, _ := newTestService(t)
	p := requestAndAccept(t, svc)
	ctx := context.Background()

	cancelled, err := svc.CancelPickup(ctx, citizen, p.ID, "changed my mind")
	require.NoError(t, err)
	require.Equal(t, model.StatusCancelled, cancelled.Status)
	require.False(t, cancelled.Assigned())

	// terminal: nobody can accept a cancelled pickup
	_, err = svc.AcceptPickup(ctx, secondDriver, p.ID)
	require.ErrorIs(t, err, myerrors.ErrStateConflict)
}

func TestCancelPickupAfterCompletionConflicts(t *testing.T) {
	svc, _, _ := newTestService(t)
	p := requestAndAccept(t, svc)
	ctx := context.Background()

	_, err := svc.CompletePickup(ctx, driver, p.ID, 4)
	require.NoError(t, err)

	_, err = svc.CancelPickup(ctx, citizen, p.ID, "too late")
	require.ErrorIs(t, err, myerrors.ErrStateConflict)
}

func TestCancelPickupStranger(t *testing.T) {
	svc, _, _ := newTestService(t)
	p := requestAndAccept(t, svc)

	stranger := identity.Identity{UserID: "citizen-9", Role: identity.RoleCitizen}
	_, err := svc.CancelPickup(context.Background(), stranger, p.ID, "not mine")
	require.ErrorIs(t, err, myerrors.ErrForbidden)
}

func TestListOfferable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p1, err := svc.RequestPickup(ctx, citizen, pickupRequest())
	require.NoError(t, err)
	p2, err := svc.RequestPickup(ctx, citizen, pickupRequest())
	require.NoError(t, err)

	_, err = svc.AcceptPickup(ctx, driver, p1.ID)
	require.NoError(t, err)

	offerable, err := svc.ListOfferable(ctx)
	require.NoError(t, err)
	require.Len(t, offerable, 1)
	require.Equal(t, p2.ID, offerable[0].ID)
}
