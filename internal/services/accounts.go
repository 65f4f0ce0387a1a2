package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
)

type BankAccountService struct {
	mu           *sync.Mutex
	accounts     repositories.BankAccountRepository
	owners       repositories.OwnerRepository
	transactions repositories.TransactionRepository
}

func (s *BankAccountService) GetAll(ctx context.Context) ([]models.BankAccount, error) {
	return s.accounts.GetAll(ctx)
}

func (s *BankAccountService) GetByID(ctx context.Context, id string) (models.BankAccount, error) {
	return s.accounts.GetByID(ctx, id)
}

func (s *BankAccountService) Create(ctx context.Context, name string, initialBalance float64, ownerID string) Result[models.BankAccount] {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found, err := lookup(func() (models.Owner, error) { return s.owners.GetByID(ctx, ownerID) })
	if err != nil {
		return failed[models.BankAccount](err)
	}
	if !found {
		return failure[models.BankAccount](common.ErrorNotFound, "owner not found")
	}

	account := models.NewBankAccount(name, initialBalance, ownerID)
	if err := s.accounts.Create(ctx, account); err != nil {
		return failed[models.BankAccount](err)
	}
	return succeed(account)
}

// Update stores account. A change of InitialBalance shifts the stored
// CurrentBalance by the same delta; the incoming CurrentBalance is ignored
// so effects applied since creation are kept.
func (s *BankAccountService) Update(ctx context.Context, account models.BankAccount) Result[models.BankAccount] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := account.Validate(); err != nil {
		return invalid[models.BankAccount](err)
	}
	existing, found, err := lookup(func() (models.BankAccount, error) { return s.accounts.GetByID(ctx, account.ID) })
	if err != nil {
		return failed[models.BankAccount](err)
	}
	if !found {
		return failure[models.BankAccount](common.ErrorNotFound, "bank account not found")
	}

	account.CurrentBalance = existing.CurrentBalance + (account.InitialBalance - existing.InitialBalance)
	if err := s.accounts.Update(ctx, account); err != nil {
		return failed[models.BankAccount](err)
	}
	return succeed(account)
}

// Delete refuses while any transfer touches the account.
func (s *BankAccountService) Delete(ctx context.Context, id string) Result[None] {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found, err := lookup(func() (models.BankAccount, error) { return s.accounts.GetByID(ctx, id) })
	if err != nil {
		return failed[None](err)
	}
	if !found {
		return failure[None](common.ErrorNotFound, "bank account not found")
	}

	transactions, err := s.transactions.GetByAccountID(ctx, id)
	if err != nil {
		return failed[None](err)
	}
	if len(transactions) > 0 {
		return failure[None](common.ErrorReferentialIntegrity, "cannot delete the bank account: transactions are linked to it")
	}

	if err := s.accounts.Delete(ctx, id); err != nil {
		return failed[None](err)
	}
	return succeed(None{})
}
