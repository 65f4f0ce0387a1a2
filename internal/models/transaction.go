package models

import "time"

// Transaction is a transfer between two accounts. The origin is always
// debited by Amount and the destination credited, whatever the sign.
type Transaction struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Amount               float64   `json:"amount"`
	OriginAccountID      string    `json:"originAccountId"`
	DestinationAccountID string    `json:"destinationAccountId"`
	Date                 time.Time `json:"date"`
}

type CreateTransactionInput struct {
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Amount               float64   `json:"amount"`
	OriginAccountID      string    `json:"originAccountId"`
	DestinationAccountID string    `json:"destinationAccountId"`
	Date                 time.Time `json:"date"`
}

func NewTransaction(in CreateTransactionInput) Transaction {
	return Transaction{
		ID:                   newID(),
		Name:                 in.Name,
		Description:          in.Description,
		Amount:               in.Amount,
		OriginAccountID:      in.OriginAccountID,
		DestinationAccountID: in.DestinationAccountID,
		Date:                 in.Date,
	}
}

func (t Transaction) EntityID() string { return t.ID }

func (t Transaction) RequiredFields() []string {
	return []string{"id", "name", "amount", "originAccountId", "destinationAccountId", "date"}
}

func (t Transaction) Validate() error {
	return firstError(
		requireID("transaction", "id", t.ID),
		requireID("transaction", "originAccountId", t.OriginAccountID),
		requireID("transaction", "destinationAccountId", t.DestinationAccountID),
		requireTime("transaction", "date", t.Date),
	)
}

// Touches reports whether accountID is the origin or the destination.
func (t Transaction) Touches(accountID string) bool {
	return t.OriginAccountID == accountID || t.DestinationAccountID == accountID
}
