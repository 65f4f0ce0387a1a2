package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
)

type TransactionService struct {
	mu           *sync.Mutex
	transactions repositories.TransactionRepository
	accounts     repositories.BankAccountRepository
	ledger       ledger
}

func (s *TransactionService) GetAll(ctx context.Context) ([]models.Transaction, error) {
	return s.transactions.GetAll(ctx)
}

func (s *TransactionService) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	return s.transactions.GetByID(ctx, id)
}

// Create records a transfer and moves Amount from origin to destination.
func (s *TransactionService) Create(ctx context.Context, in models.CreateTransactionInput) Result[models.Transaction] {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []string{in.OriginAccountID, in.DestinationAccountID} {
		_, found, err := lookup(func() (models.BankAccount, error) { return s.accounts.GetByID(ctx, id) })
		if err != nil {
			return failed[models.Transaction](err)
		}
		if !found {
			return failure[models.Transaction](common.ErrorNotFound, "origin or destination account not found")
		}
	}

	t := models.NewTransaction(in)
	if err := t.Validate(); err != nil {
		return invalid[models.Transaction](err)
	}
	if err := s.transactions.Create(ctx, t); err != nil {
		return failed[models.Transaction](err)
	}
	if err := s.ledger.transfer(ctx, t, apply); err != nil {
		return failed[models.Transaction](err)
	}
	return succeed(t)
}

// Update reverses the stored transfer and applies the new one, so any
// change of amount, direction or accounts is reflected.
func (s *TransactionService) Update(ctx context.Context, t models.Transaction) Result[models.Transaction] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := t.Validate(); err != nil {
		return invalid[models.Transaction](err)
	}
	existing, found, err := lookup(func() (models.Transaction, error) { return s.transactions.GetByID(ctx, t.ID) })
	if err != nil {
		return failed[models.Transaction](err)
	}
	if !found {
		return failure[models.Transaction](common.ErrorNotFound, "transaction not found")
	}

	if err := s.ledger.transfer(ctx, existing, reverse); err != nil {
		return failed[models.Transaction](err)
	}
	if err := s.ledger.transfer(ctx, t, apply); err != nil {
		return failed[models.Transaction](err)
	}
	if err := s.transactions.Update(ctx, t); err != nil {
		return failed[models.Transaction](err)
	}
	return succeed(t)
}

func (s *TransactionService) Delete(ctx context.Context, id string) Result[None] {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, found, err := lookup(func() (models.Transaction, error) { return s.transactions.GetByID(ctx, id) })
	if err != nil {
		return failed[None](err)
	}
	if !found {
		return failure[None](common.ErrorNotFound, "transaction not found")
	}

	if err := s.ledger.transfer(ctx, existing, reverse); err != nil {
		return failed[None](err)
	}
	if err := s.transactions.Delete(ctx, id); err != nil {
		return failed[None](err)
	}
	return succeed(None{})
}
