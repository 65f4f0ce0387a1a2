package models

import "time"

// BalanceHistoryEntryType tells transfers and settled payments apart.
type BalanceHistoryEntryType string

const (
	HistoryEntryTransaction BalanceHistoryEntryType = "transaction"
	HistoryEntryPayment     BalanceHistoryEntryType = "payment"
)

// BalanceHistoryEntry is a read-only projection; it is never persisted.
// Amount is signed from the point of view of the account being viewed.
type BalanceHistoryEntry struct {
	ID              string                  `json:"id"`
	Date            time.Time               `json:"date"`
	Type            BalanceHistoryEntryType `json:"type"`
	Description     string                  `json:"description"`
	Amount          float64                 `json:"amount"`
	TargetAccountID *string                 `json:"targetAccountId,omitempty"`
}
