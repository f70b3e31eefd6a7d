package dto

import "time"

type BalanceResponseDto struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

type LedgerEntryDto struct {
	EntryID   string    `json:"entry_id"`
	EntryType string    `json:"entry_type"`
	Amount    int64     `json:"amount"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}

type RewardItemDto struct {
	ItemID      string `json:"item_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CostPoints  int64  `json:"cost_points"`
	Stock       int64  `json:"stock"`
}

type RedemptionResponseDto struct {
	RedemptionID string    `json:"redemption_id"`
	ItemID       string    `json:"item_id"`
	ItemName     string    `json:"item_name"`
	CostPoints   int64     `json:"cost_points"`
	Status       string    `json:"status"`
	BalanceAfter int64     `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

type RedemptionStatusDto struct {
	Status *string `json:"status"`
}
