package models

import "time"

// PaymentStatus is the settlement state of a single bill.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusSkipped PaymentStatus = "skipped"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusSkipped:
		return true
	}
	return false
}

// Payment is a single bill instance, optionally generated from a template.
// Only paid payments affect the linked account's balance.
type Payment struct {
	ID            string        `json:"id"`
	TemplateID    *string       `json:"templateId,omitempty"`
	PaymentDate   time.Time     `json:"paymentDate"`
	DueDateDay    *int          `json:"dueDateDay,omitempty"`
	Value         float64       `json:"value"`
	Status        PaymentStatus `json:"status"`
	BankAccountID string        `json:"bankAccountId"`
	OwnerID       string        `json:"ownerId"`
	CategoryID    string        `json:"categoryId"`
	Notes         *string       `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type CreatePaymentInput struct {
	TemplateID    *string       `json:"templateId,omitempty"`
	PaymentDate   time.Time     `json:"paymentDate"`
	DueDateDay    *int          `json:"dueDateDay,omitempty"`
	Value         float64       `json:"value"`
	Status        PaymentStatus `json:"status,omitempty"`
	BankAccountID string        `json:"bankAccountId"`
	OwnerID       string        `json:"ownerId"`
	CategoryID    string        `json:"categoryId"`
	Notes         *string       `json:"notes,omitempty"`
}

// NewPayment stamps identity and timestamps; status defaults to pending.
func NewPayment(in CreatePaymentInput) Payment {
	ts := now()
	status := in.Status
	if status == "" {
		status = PaymentStatusPending
	}
	return Payment{
		ID:            newID(),
		TemplateID:    in.TemplateID,
		PaymentDate:   in.PaymentDate,
		DueDateDay:    in.DueDateDay,
		Value:         in.Value,
		Status:        status,
		BankAccountID: in.BankAccountID,
		OwnerID:       in.OwnerID,
		CategoryID:    in.CategoryID,
		Notes:         in.Notes,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
}

func (p Payment) EntityID() string { return p.ID }

func (p Payment) RequiredFields() []string {
	return []string{"id", "paymentDate", "value", "status", "bankAccountId", "ownerId", "categoryId", "createdAt", "updatedAt"}
}

func (p Payment) Validate() error {
	if !p.Status.Valid() {
		return invalid("payment", "unknown status %q", p.Status)
	}
	return firstError(
		requireID("payment", "id", p.ID),
		requireID("payment", "bankAccountId", p.BankAccountID),
		requireID("payment", "ownerId", p.OwnerID),
		requireID("payment", "categoryId", p.CategoryID),
		requireTime("payment", "paymentDate", p.PaymentDate),
		requireTime("payment", "createdAt", p.CreatedAt),
		requireTime("payment", "updatedAt", p.UpdatedAt),
		checkDueDay("payment", p.DueDateDay),
	)
}

// IsPaid reports whether the payment currently carries a balance effect.
func (p Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}

// FromTemplate reports whether the payment was generated from templateID.
func (p Payment) FromTemplate(templateID string) bool {
	return p.TemplateID != nil && *p.TemplateID == templateID
}
