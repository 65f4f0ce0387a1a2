package models

import (
	"slices"
	"time"
)

// PaymentBatch records a bulk settlement of several payments.
type PaymentBatch struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	PaymentIDs []string  `json:"paymentIds"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CreatePaymentBatchInput struct {
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	PaymentIDs []string  `json:"paymentIds"`
}

func NewPaymentBatch(in CreatePaymentBatchInput) PaymentBatch {
	ts := now()
	return PaymentBatch{
		ID:         newID(),
		Name:       in.Name,
		Date:       in.Date,
		PaymentIDs: slices.Clone(in.PaymentIDs),
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
}

func (b PaymentBatch) EntityID() string { return b.ID }

func (b PaymentBatch) RequiredFields() []string {
	return []string{"id", "name", "date", "paymentIds", "createdAt", "updatedAt"}
}

func (b PaymentBatch) Validate() error {
	return firstError(
		requireID("payment batch", "id", b.ID),
		requireTime("payment batch", "date", b.Date),
		requireTime("payment batch", "createdAt", b.CreatedAt),
		requireTime("payment batch", "updatedAt", b.UpdatedAt),
	)
}

// Contains reports whether paymentID was settled by this batch.
func (b PaymentBatch) Contains(paymentID string) bool {
	return slices.Contains(b.PaymentIDs, paymentID)
}
