package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
)

type PaymentBatchService struct {
	mu       *sync.Mutex
	batches  repositories.PaymentBatchRepository
	payments repositories.PaymentRepository
	ledger   ledger
}

func (s *PaymentBatchService) GetAll(ctx context.Context) ([]models.PaymentBatch, error) {
	return s.batches.GetAll(ctx)
}

func (s *PaymentBatchService) GetByID(ctx context.Context, id string) (models.PaymentBatch, error) {
	return s.batches.GetByID(ctx, id)
}

// Create settles every selected payment as one unit. All payments are
// checked before anything is written; a failure while writing is not
// rolled back.
func (s *PaymentBatchService) Create(ctx context.Context, in models.CreatePaymentBatchInput) Result[models.PaymentBatch] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(in.PaymentIDs) == 0 {
		return failure[models.PaymentBatch](common.ErrorInvalidInput, "select at least one payment")
	}

	selected := make([]models.Payment, 0, len(in.PaymentIDs))
	seen := make(map[string]bool, len(in.PaymentIDs))
	for _, id := range in.PaymentIDs {
		if seen[id] {
			return failure[models.PaymentBatch](common.ErrorInvalidInput, "payment %s is selected twice", id)
		}
		seen[id] = true

		p, found, err := lookup(func() (models.Payment, error) { return s.payments.GetByID(ctx, id) })
		if err != nil {
			return failed[models.PaymentBatch](err)
		}
		if !found {
			return failure[models.PaymentBatch](common.ErrorNotFound, "payment %s not found", id)
		}
		if p.Status != models.PaymentStatusPending {
			return failure[models.PaymentBatch](common.ErrorInvalidInput, "payment %s is not pending", id)
		}
		selected = append(selected, p)
	}

	batch := models.NewPaymentBatch(in)
	if err := batch.Validate(); err != nil {
		return invalid[models.PaymentBatch](err)
	}
	if err := s.batches.Create(ctx, batch); err != nil {
		return failed[models.PaymentBatch](err)
	}

	for _, p := range selected {
		p.Status = models.PaymentStatusPaid
		p.UpdatedAt = now()
		if err := s.payments.Update(ctx, p); err != nil {
			return failed[models.PaymentBatch](err)
		}
		if err := s.ledger.payment(ctx, p, apply); err != nil {
			return failed[models.PaymentBatch](err)
		}
	}
	return succeed(batch)
}

// Delete removes the batch record only. Its payments stay paid and the
// balances are not restored.
func (s *PaymentBatchService) Delete(ctx context.Context, id string) Result[None] {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found, err := lookup(func() (models.PaymentBatch, error) { return s.batches.GetByID(ctx, id) })
	if err != nil {
		return failed[None](err)
	}
	if !found {
		return failure[None](common.ErrorNotFound, "payment batch not found")
	}
	if err := s.batches.Delete(ctx, id); err != nil {
		return failed[None](err)
	}
	return succeed(None{})
}
