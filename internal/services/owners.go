package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
)

type OwnerService struct {
	mu        *sync.Mutex
	owners    repositories.OwnerRepository
	accounts  repositories.BankAccountRepository
	templates repositories.PaymentTemplateRepository
	payments  repositories.PaymentRepository
}

func (s *OwnerService) GetAll(ctx context.Context) ([]models.Owner, error) {
	return s.owners.GetAll(ctx)
}

func (s *OwnerService) GetByID(ctx context.Context, id string) (models.Owner, error) {
	return s.owners.GetByID(ctx, id)
}

func (s *OwnerService) Create(ctx context.Context, name string) Result[models.Owner] {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner := models.NewOwner(name)
	if err := s.owners.Create(ctx, owner); err != nil {
		return failed[models.Owner](err)
	}
	return succeed(owner)
}

func (s *OwnerService) Update(ctx context.Context, owner models.Owner) Result[models.Owner] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := owner.Validate(); err != nil {
		return invalid[models.Owner](err)
	}
	_, found, err := lookup(func() (models.Owner, error) { return s.owners.GetByID(ctx, owner.ID) })
	if err != nil {
		return failed[models.Owner](err)
	}
	if !found {
		return failure[models.Owner](common.ErrorNotFound, "owner not found")
	}
	if err := s.owners.Update(ctx, owner); err != nil {
		return failed[models.Owner](err)
	}
	return succeed(owner)
}

// Delete refuses while accounts, templates or payments (checked in that
// order) still reference the owner.
func (s *OwnerService) Delete(ctx context.Context, id string) Result[None] {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found, err := lookup(func() (models.Owner, error) { return s.owners.GetByID(ctx, id) })
	if err != nil {
		return failed[None](err)
	}
	if !found {
		return failure[None](common.ErrorNotFound, "owner not found")
	}

	accounts, err := s.accounts.GetByOwnerID(ctx, id)
	if err != nil {
		return failed[None](err)
	}
	if len(accounts) > 0 {
		return failure[None](common.ErrorReferentialIntegrity, "cannot delete the owner: bank accounts are linked to it")
	}

	templates, err := s.templates.GetByOwnerID(ctx, id)
	if err != nil {
		return failed[None](err)
	}
	if len(templates) > 0 {
		return failure[None](common.ErrorReferentialIntegrity, "cannot delete the owner: payment templates are linked to it")
	}

	payments, err := s.payments.GetByOwnerID(ctx, id)
	if err != nil {
		return failed[None](err)
	}
	if len(payments) > 0 {
		return failure[None](common.ErrorReferentialIntegrity, "cannot delete the owner: payments are linked to it")
	}

	if err := s.owners.Delete(ctx, id); err != nil {
		return failed[None](err)
	}
	return succeed(None{})
}
