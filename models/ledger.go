package models

import "time"

const (
	LedgerAccrual    = "accrual"
	LedgerRedemption = "redemption"
	LedgerBonus      = "bonus"
)

// LedgerEntry is one immutable point-balance change. The ledger is
// append-only and is the source of truth for point history. Points is
// positive for accruals and bonuses, negative for redemptions.
type LedgerEntry struct {
	ID             uint      `json:"id"`
	CustomerID     uint      `json:"customer_id"`
	CardID         string    `json:"card_id"`
	Kind           string    `json:"kind"`
	Points         int       `json:"points"`
	PurchaseAmount float64   `json:"purchase_amount,omitempty"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
}
