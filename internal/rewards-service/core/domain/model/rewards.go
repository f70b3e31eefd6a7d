package model

import "time"

const (
	EntryEarned = "EARNED"
	EntrySpent  = "SPENT"
)

// LedgerEntry is an immutable row in a user's points ledger. Corrections are
// made with offsetting entries, never by editing.
type LedgerEntry struct {
	ID        string
	UserID    string
	EntryType string
	Amount    int64
	Reference string
	CreatedAt time.Time
}

// RewardItem is a catalog entry citizens spend points on.
type RewardItem struct {
	ID          string
	Name        string
	Description string
	CostPoints  int64
	Stock       int64
	Active      bool
}

func (r RewardItem) Available() bool {
	return r.Active && r.Stock > 0
}

type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "PENDING"
	RedemptionProcessed RedemptionStatus = "PROCESSED"
	RedemptionDelivered RedemptionStatus = "DELIVERED"
)

var redemptionRank = map[RedemptionStatus]int{
	RedemptionPending:   1,
	RedemptionProcessed: 2,
	RedemptionDelivered: 3,
}

func (s RedemptionStatus) Valid() bool {
	_, ok := redemptionRank[s]
	return ok
}

// CanAdvanceRedemption reports whether a redemption may move from one status
// to the next. Fulfilment only moves forward, one step at a time.
func CanAdvanceRedemption(from, to RedemptionStatus) bool {
	fr, ok := redemptionRank[from]
	if !ok {
		return false
	}
	tr, ok := redemptionRank[to]
	if !ok {
		return false
	}
	return tr == fr+1
}

// Redemption records a successful spend: the cost is captured at redemption
// time so later catalog price changes do not rewrite history.
type Redemption struct {
	ID         string
	UserID     string
	ItemID     string
	ItemName   string
	CostPoints int64
	Status     RedemptionStatus
	CreatedAt  time.Time
}
