package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"waste-collect/internal/identity"
	"waste-collect/internal/metrics"
	"waste-collect/internal/mylogger"
	brokerdto "waste-collect/internal/pickup-service/core/domain/broker_dto"
	"waste-collect/internal/pickup-service/core/domain/dto"
	"waste-collect/internal/pickup-service/core/domain/model"
	"waste-collect/internal/pickup-service/core/myerrors"
	"waste-collect/internal/pickup-service/core/ports"
)

const opTimeout = time.Second * 15

type PickupService struct {
	mylog      mylogger.Logger
	pickupRepo ports.IPickupRepo
	ratesRepo  ports.IRatesRepo
	broker     ports.IPickupBroker
}

func NewPickupService(
	log mylogger.Logger,
	pickupRepo ports.IPickupRepo,
	ratesRepo ports.IRatesRepo,
	broker ports.IPickupBroker,
) ports.IPickupService {
	return &PickupService{
		mylog:      log,
		pickupRepo: pickupRepo,
		ratesRepo:  ratesRepo,
		broker:     broker,
	}
}

func (ps *PickupService) RequestPickup(ctx context.Context, ident identity.Identity, req dto.PickupRequestDto) (model.Pickup, error) {
	log := ps.mylog.Action("RequestPickup")

	if !ident.IsCitizen() {
		return model.Pickup{}, fmt.Errorf("%w: only citizens can request pickups", myerrors.ErrForbidden)
	}

	scheduledAt, categories, err := validatePickupRequest(req)
	if err != nil {
		return model.Pickup{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// only for the human-readable pickup number
	countToday, err := ps.pickupRepo.CountForDay(ctx, time.Now())
	if err != nil {
		log.Error("cannot count pickups for today", err)
		return model.Pickup{}, err
	}

	now := time.Now()
	p := model.Pickup{
		PickupNumber:      fmt.Sprintf("PCK_%s_%03d", now.Format("20060102"), countToday+1),
		RequesterID:       ident.UserID,
		Address:           *req.Address,
		ScheduledAt:       scheduledAt,
		Categories:        categories,
		EstimatedWeightKg: *req.EstimatedWeightKg,
		Status:            model.StatusScheduled,
	}

	created, err := ps.pickupRepo.Create(ctx, p)
	if err != nil {
		log.Error("cannot create pickup", err)
		return model.Pickup{}, err
	}

	metrics.PickupsCreated.Inc()
	log.Info("pickup requested",
		"pickup_id", created.ID,
		"pickup_number", created.PickupNumber,
		"requester_id", ident.UserID,
		"categories", categories,
	)

	ps.publishStatus(ctx, created, "")
	return created, nil
}

func (ps *PickupService) AcceptPickup(ctx context.Context, ident identity.Identity, pickupID string) (model.Pickup, error) {
	log := ps.mylog.Action("AcceptPickup")

	if !ident.IsDriver() {
		return model.Pickup{}, fmt.Errorf("%w: only drivers can accept pickups", myerrors.ErrForbidden)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// Single compare-and-swap on (status, driver_id): of two concurrent
	// accepts exactly one wins, the other gets a state conflict.
	accepted, err := ps.pickupRepo.Accept(ctx, pickupID, ident.UserID)
	if err != nil {
		if errors.Is(err, myerrors.ErrStateConflict) {
			metrics.AcceptConflicts.Inc()
			log.Warn("accept lost the race", "pickup_id", pickupID, "driver_id", ident.UserID)
		}
		return model.Pickup{}, err
	}

	metrics.PickupsAccepted.Inc()
	log.Info("pickup accepted", "pickup_id", pickupID, "driver_id", ident.UserID)

	ps.publishStatus(ctx, accepted, "")
	return accepted, nil
}

func (ps *PickupService) AdvanceStatus(ctx context.Context, ident identity.Identity, pickupID string, next model.Status) (model.Pickup, error) {
	log := ps.mylog.Action("AdvanceStatus")

	if !ident.IsDriver() {
		return model.Pickup{}, fmt.Errorf("%w: only drivers advance pickup status", myerrors.ErrForbidden)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	p, err := ps.pickupRepo.GetByID(ctx, pickupID)
	if err != nil {
		return model.Pickup{}, err
	}
	if p.DriverID != ident.UserID {
		return model.Pickup{}, fmt.Errorf("%w: pickup is assigned to another driver", myerrors.ErrForbidden)
	}
	if !model.CanAdvance(p.Status, next) {
		return model.Pickup{}, fmt.Errorf("%w: cannot advance from %s to %s", myerrors.ErrStateConflict, p.Status, next)
	}

	// Guarded on the status we just read, so two concurrent ticks cannot
	// both report the same transition.
	advanced, err := ps.pickupRepo.Advance(ctx, pickupID, ident.UserID, p.Status, next)
	if err != nil {
		return model.Pickup{}, err
	}

	log.Info("pickup status advanced", "pickup_id", pickupID, "from", p.Status, "to", next)

	ps.publishStatus(ctx, advanced, "")
	return advanced, nil
}

func (ps *PickupService) CompletePickup(ctx context.Context, ident identity.Identity, pickupID string, actualWeightKg float64) (model.Settlement, error) {
	log := ps.mylog.Action("CompletePickup")

	if !ident.IsDriver() {
		return model.Settlement{}, fmt.Errorf("%w: only drivers complete pickups", myerrors.ErrForbidden)
	}
	if actualWeightKg <= 0 {
		return model.Settlement{}, myerrors.ErrInvalidWeight
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	p, err := ps.pickupRepo.GetByID(ctx, pickupID)
	if err != nil {
		return model.Settlement{}, err
	}
	if !model.CanComplete(p.Status) {
		return model.Settlement{}, fmt.Errorf("%w: cannot complete pickup in status %s", myerrors.ErrStateConflict, p.Status)
	}
	if p.DriverID != ident.UserID {
		return model.Settlement{}, fmt.Errorf("%w: pickup is assigned to another driver", myerrors.ErrForbidden)
	}

	rates, err := ps.ratesRepo.ActiveRates(ctx)
	if err != nil {
		log.Error("cannot load waste rates", err)
		return model.Settlement{}, err
	}
	points, commission := ComputeSettlement(actualWeightKg, p.Categories, rates)

	// One atomic step: the pickup flips to COMPLETED exactly once, and the
	// ledger credit plus driver daily totals land with it or not at all.
	settled, err := ps.pickupRepo.Settle(ctx, model.SettleParams{
		PickupID:         pickupID,
		DriverID:         ident.UserID,
		RequesterID:      p.RequesterID,
		ActualWeightKg:   actualWeightKg,
		PointsEarned:     points,
		CommissionAmount: commission,
		CompletedAt:      time.Now(),
	})
	if err != nil {
		return model.Settlement{}, err
	}

	metrics.PickupsCompleted.Inc()
	metrics.PointsIssued.Add(float64(points))
	log.Info("pickup settled",
		"pickup_id", pickupID,
		"driver_id", ident.UserID,
		"actual_weight_kg", actualWeightKg,
		"points_earned", points,
		"commission_amount", commission,
	)

	ps.publishStatus(ctx, settled, "")
	if err := ps.broker.PushSettlementEvent(ctx, brokerdto.SettlementEvent{
		PickupID:         settled.ID,
		RequesterID:      settled.RequesterID,
		DriverID:         settled.DriverID,
		ActualWeightKg:   settled.ActualWeightKg,
		PointsEarned:     settled.PointsEarned,
		CommissionAmount: settled.CommissionAmount,
		CompletedAt:      settled.CompletedAt.Format(time.RFC3339),
	}); err != nil {
		// Settlement already committed; the event is best-effort.
		log.Error("cannot publish settlement event", err, "pickup_id", pickupID)
	}

	return model.Settlement{
		PickupID:         settled.ID,
		ActualWeightKg:   settled.ActualWeightKg,
		PointsEarned:     settled.PointsEarned,
		CommissionAmount: settled.CommissionAmount,
		CompletedAt:      settled.CompletedAt,
	}, nil
}

func (ps *PickupService) CancelPickup(ctx context.Context, ident identity.Identity, pickupID, reason string) (model.Pickup, error) {
	log := ps.mylog.Action("CancelPickup")

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	p, err := ps.pickupRepo.GetByID(ctx, pickupID)
	if err != nil {
		return model.Pickup{}, err
	}
	if p.Status.Terminal() {
		return model.Pickup{}, fmt.Errorf("%w: pickup already %s", myerrors.ErrStateConflict, p.Status)
	}

	var cancelled model.Pickup
	switch {
	case ident.IsAdmin() || ident.UserID == p.RequesterID:
		// The order itself is withdrawn.
		cancelled, err = ps.pickupRepo.Cancel(ctx, pickupID, reason)
	case p.Assigned() && ident.UserID == p.DriverID:
		// The driver backs out: the pickup returns to the offerable pool
		// and a different driver can accept it.
		cancelled, err = ps.pickupRepo.Release(ctx, pickupID, ident.UserID, reason)
	default:
		return model.Pickup{}, fmt.Errorf("%w: not allowed to cancel this pickup", myerrors.ErrForbidden)
	}
	if err != nil {
		return model.Pickup{}, err
	}

	metrics.PickupsCancelled.Inc()
	log.Info("pickup cancelled", "pickup_id", pickupID, "by", ident.UserID, "reason", reason, "status", cancelled.Status)

	ps.publishStatus(ctx, cancelled, reason)
	return cancelled, nil
}

func (ps *PickupService) GetPickup(ctx context.Context, pickupID string) (model.Pickup, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return ps.pickupRepo.GetByID(ctx, pickupID)
}

func (ps *PickupService) ListOfferable(ctx context.Context) ([]model.Pickup, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return ps.pickupRepo.ListOfferable(ctx)
}

func (ps *PickupService) publishStatus(ctx context.Context, p model.Pickup, reason string) {
	event := brokerdto.StatusEvent{
		PickupID:      p.ID,
		PickupNumber:  p.PickupNumber,
		RequesterID:   p.RequesterID,
		DriverID:      p.DriverID,
		Status:        string(p.Status),
		Reason:        reason,
		Timestamp:     time.Now().Format(time.RFC3339),
		CorrelationID: uuid.NewString(),
	}
	if err := ps.broker.PushStatusEvent(ctx, event); err != nil {
		ps.mylog.Action("publishStatus").Error("cannot publish status event", err, "pickup_id", p.ID)
	}
}
