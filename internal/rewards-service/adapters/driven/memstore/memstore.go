package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"waste-collect/internal/rewards-service/core/domain/model"
	"waste-collect/internal/rewards-service/core/myerrors"
)

// Store is the in-memory persistence substrate for the rewards service.
// Redeem runs its whole precondition-check-and-write under the store lock,
// matching the transactional guarantees of the SQL adapter.
type Store struct {
	mu          sync.Mutex
	entries     map[string][]model.LedgerEntry
	balances    map[string]int64
	items       map[string]model.RewardItem
	redemptions map[string]model.Redemption
}

func New() *Store {
	return &Store{
		entries:     make(map[string][]model.LedgerEntry),
		balances:    make(map[string]int64),
		items:       make(map[string]model.RewardItem),
		redemptions: make(map[string]model.Redemption),
	}
}

// SeedItem installs a catalog row.
func (s *Store) SeedItem(item model.RewardItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
}

func (s *Store) Credit(ctx context.Context, userID string, amount int64, reference string) (model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.append(userID, model.EntryEarned, amount, reference), nil
}

func (s *Store) Debit(ctx context.Context, userID string, amount int64, reference string) (model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balances[userID] < amount {
		return model.LedgerEntry{}, fmt.Errorf("%w: need %d points", myerrors.ErrInsufficientBalance, amount)
	}
	return s.append(userID, model.EntrySpent, amount, reference), nil
}

func (s *Store) Balance(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[userID], nil
}

func (s *Store) Entries(ctx context.Context, userID string) ([]model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// newest first, matching the SQL ordering
	stored := s.entries[userID]
	out := make([]model.LedgerEntry, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}

func (s *Store) ListActive(ctx context.Context) ([]model.RewardItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.RewardItem
	for _, item := range s.items {
		if item.Active {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CostPoints < out[j].CostPoints })
	return out, nil
}

func (s *Store) GetItem(ctx context.Context, itemID string) (model.RewardItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return model.RewardItem{}, fmt.Errorf("%w: reward item %s", myerrors.ErrNotFound, itemID)
	}
	return item, nil
}

func (s *Store) Redeem(ctx context.Context, userID, itemID string) (model.Redemption, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return model.Redemption{}, 0, fmt.Errorf("%w: reward item %s", myerrors.ErrNotFound, itemID)
	}
	if !item.Available() {
		return model.Redemption{}, 0, fmt.Errorf("%w: %s", myerrors.ErrOutOfStock, item.Name)
	}
	if s.balances[userID] < item.CostPoints {
		return model.Redemption{}, 0, fmt.Errorf("%w: %s costs %d points", myerrors.ErrInsufficientBalance, item.Name, item.CostPoints)
	}

	item.Stock--
	s.items[itemID] = item

	r := model.Redemption{
		ID:         uuid.NewString(),
		UserID:     userID,
		ItemID:     itemID,
		ItemName:   item.Name,
		CostPoints: item.CostPoints,
		Status:     model.RedemptionPending,
		CreatedAt:  time.Now(),
	}
	s.append(userID, model.EntrySpent, item.CostPoints, "redemption:"+r.ID)
	s.redemptions[r.ID] = r
	return r, s.balances[userID], nil
}

func (s *Store) GetByID(ctx context.Context, redemptionID string) (model.Redemption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.redemptions[redemptionID]
	if !ok {
		return model.Redemption{}, fmt.Errorf("%w: redemption %s", myerrors.ErrNotFound, redemptionID)
	}
	return r, nil
}

func (s *Store) AdvanceStatus(ctx context.Context, redemptionID string, from, to model.RedemptionStatus) (model.Redemption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.redemptions[redemptionID]
	if !ok {
		return model.Redemption{}, fmt.Errorf("%w: redemption %s", myerrors.ErrNotFound, redemptionID)
	}
	if r.Status != from {
		return model.Redemption{}, fmt.Errorf("%w: redemption %s is no longer %s", myerrors.ErrStateConflict, redemptionID, from)
	}

	r.Status = to
	s.redemptions[redemptionID] = r
	return r, nil
}

// append records a ledger entry and keeps the materialized balance in step.
// Callers hold the store lock.
func (s *Store) append(userID, entryType string, amount int64, reference string) model.LedgerEntry {
	e := model.LedgerEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		EntryType: entryType,
		Amount:    amount,
		Reference: reference,
		CreatedAt: time.Now(),
	}
	s.entries[userID] = append(s.entries[userID], e)
	if entryType == model.EntrySpent {
		s.balances[userID] -= amount
	} else {
		s.balances[userID] += amount
	}
	return e
}
