package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"waste-collect/internal/pickup-service/core/domain/model"
	"waste-collect/internal/pickup-service/core/myerrors"
)

// Crediter receives the ledger credit produced by a settlement. The rewards
// ledger (or a test double) plugs in here.
type Crediter interface {
	Credit(ctx context.Context, userID string, amount int64, reference string) error
}

type perfKey struct {
	DriverID string
	Day      string
}

// DailyPerformance mirrors the driver_daily_performance row for in-memory
// runs.
type DailyPerformance struct {
	DriverID         string
	Day              string
	PickupsCompleted int64
	TotalWeightKg    float64
	CommissionEarned float64
}

// Store is the in-memory persistence substrate backing tests and the
// simulator. Every transition method takes the store lock for the whole
// check-and-mutate step, which gives the same compare-and-swap guarantees as
// the guarded SQL updates.
type Store struct {
	mu       sync.Mutex
	pickups  map[string]model.Pickup
	rates    map[string]model.WasteRate
	perf     map[perfKey]*DailyPerformance
	crediter Crediter
}

func New(crediter Crediter) *Store {
	return &Store{
		pickups:  make(map[string]model.Pickup),
		rates:    make(map[string]model.WasteRate),
		perf:     make(map[perfKey]*DailyPerformance),
		crediter: crediter,
	}
}

// SeedRate installs a waste rate row.
func (s *Store) SeedRate(r model.WasteRate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[r.Category] = r
}

func (s *Store) ActiveRates(ctx context.Context) (map[string]model.WasteRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rates := make(map[string]model.WasteRate, len(s.rates))
	for k, v := range s.rates {
		if v.Active {
			rates[k] = v
		}
	}
	return rates, nil
}

func (s *Store) Create(ctx context.Context, p model.Pickup) (model.Pickup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	s.pickups[p.ID] = p
	return clone(p), nil
}

func (s *Store) GetByID(ctx context.Context, pickupID string) (model.Pickup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pickups[pickupID]
	if !ok {
		return model.Pickup{}, myerrors.ErrNotFound
	}
	return clone(p), nil
}

func (s *Store) CountForDay(ctx context.Context, day time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, p := range s.pickups {
		if p.CreatedAt.Format("2006-01-02") == day.Format("2006-01-02") {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListOfferable(ctx context.Context) ([]model.Pickup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Pickup
	for _, p := range s.pickups {
		if p.Status == model.StatusScheduled && !p.Assigned() {
			out = append(out, clone(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (s *Store) Accept(ctx context.Context, pickupID, driverID string) (model.Pickup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pickups[pickupID]
	if !ok {
		return model.Pickup{}, myerrors.ErrNotFound
	}
	if p.Status != model.StatusScheduled || p.Assigned() {
		return model.Pickup{}, fmt.Errorf("%w: accept rejected, pickup is %s", myerrors.ErrStateConflict, p.Status)
	}

	p.Status = model.StatusAssigned
	p.DriverID = driverID
	s.pickups[pickupID] = p
	return clone(p), nil
}

func (s *Store) Advance(ctx context.Context, pickupID, driverID string, from, to model.Status) (model.Pickup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pickups[pickupID]
	if !ok {
		return model.Pickup{}, myerrors.ErrNotFound
	}
	if p.Status != from || p.DriverID != driverID {
		return model.Pickup{}, fmt.Errorf("%w: advance rejected, pickup is %s", myerrors.ErrStateConflict, p.Status)
	}

	p.Status = to
	s.pickups[pickupID] = p
	return clone(p), nil
}

func (s *Store) Cancel(ctx context.Context, pickupID, reason string) (model.Pickup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pickups[pickupID]
	if !ok {
		return model.Pickup{}, myerrors.ErrNotFound
	}
	if p.Status.Terminal() {
		return model.Pickup{}, fmt.Errorf("%w: cancel rejected, pickup is %s", myerrors.ErrStateConflict, p.Status)
	}

	p.Status = model.StatusCancelled
	p.DriverID = ""
	p.CancellationReason = reason
	s.pickups[pickupID] = p
	return clone(p), nil
}

func (s *Store) Release(ctx context.Context, pickupID, driverID, reason string) (model.Pickup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pickups[pickupID]
	if !ok {
		return model.Pickup{}, myerrors.ErrNotFound
	}
	if p.Status.Terminal() || p.Status == model.StatusScheduled || p.DriverID != driverID {
		return model.Pickup{}, fmt.Errorf("%w: release rejected, pickup is %s", myerrors.ErrStateConflict, p.Status)
	}

	p.Status = model.StatusScheduled
	p.DriverID = ""
	p.CancellationReason = reason
	s.pickups[pickupID] = p
	return clone(p), nil
}

func (s *Store) Settle(ctx context.Context, params model.SettleParams) (model.Pickup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pickups[params.PickupID]
	if !ok {
		return model.Pickup{}, myerrors.ErrNotFound
	}
	if !model.CanComplete(p.Status) || p.DriverID != params.DriverID {
		return model.Pickup{}, fmt.Errorf("%w: settle rejected, pickup is %s", myerrors.ErrStateConflict, p.Status)
	}

	// Credit first: if the ledger refuses, nothing has mutated yet.
	if s.crediter != nil {
		if err := s.crediter.Credit(ctx, params.RequesterID, params.PointsEarned, params.PickupID); err != nil {
			return model.Pickup{}, err
		}
	}

	p.Status = model.StatusCompleted
	p.ActualWeightKg = params.ActualWeightKg
	p.PointsEarned = params.PointsEarned
	p.CommissionAmount = params.CommissionAmount
	p.CompletedAt = params.CompletedAt
	s.pickups[params.PickupID] = p

	key := perfKey{DriverID: params.DriverID, Day: params.CompletedAt.Format("2006-01-02")}
	row, ok := s.perf[key]
	if !ok {
		row = &DailyPerformance{DriverID: key.DriverID, Day: key.Day}
		s.perf[key] = row
	}
	row.PickupsCompleted++
	row.TotalWeightKg += params.ActualWeightKg
	row.CommissionEarned += params.CommissionAmount

	return clone(p), nil
}

// Performance returns the driver's daily row, zero row if none.
func (s *Store) Performance(driverID string, day time.Time) DailyPerformance {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := perfKey{DriverID: driverID, Day: day.Format("2006-01-02")}
	if row, ok := s.perf[key]; ok {
		return *row
	}
	return DailyPerformance{DriverID: driverID, Day: key.Day}
}

func clone(p model.Pickup) model.Pickup {
	p.Categories = append([]string(nil), p.Categories...)
	return p
}
