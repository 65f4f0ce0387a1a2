package models

// BankAccount keeps a running balance. CurrentBalance is maintained
// incrementally by the services and never recomputed from history.
type BankAccount struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	InitialBalance float64 `json:"initialBalance"`
	CurrentBalance float64 `json:"currentBalance"`
	OwnerID        string  `json:"ownerId"`
}

// NewBankAccount opens an account whose current balance equals the initial one.
func NewBankAccount(name string, initialBalance float64, ownerID string) BankAccount {
	return BankAccount{
		ID:             newID(),
		Name:           name,
		InitialBalance: initialBalance,
		CurrentBalance: initialBalance,
		OwnerID:        ownerID,
	}
}

func (a BankAccount) EntityID() string { return a.ID }

func (a BankAccount) RequiredFields() []string {
	return []string{"id", "name", "initialBalance", "currentBalance", "ownerId"}
}

func (a BankAccount) Validate() error {
	return firstError(
		requireID("bank account", "id", a.ID),
		requireID("bank account", "ownerId", a.OwnerID),
	)
}
