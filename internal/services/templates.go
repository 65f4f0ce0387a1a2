package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
)

type PaymentTemplateService struct {
	mu         *sync.Mutex
	templates  repositories.PaymentTemplateRepository
	owners     repositories.OwnerRepository
	categories repositories.PaymentCategoryRepository
	payments   repositories.PaymentRepository
}

func (s *PaymentTemplateService) GetAll(ctx context.Context) ([]models.PaymentTemplate, error) {
	return s.templates.GetAll(ctx)
}

func (s *PaymentTemplateService) GetByID(ctx context.Context, id string) (models.PaymentTemplate, error) {
	return s.templates.GetByID(ctx, id)
}

func (s *PaymentTemplateService) Create(ctx context.Context, in models.CreatePaymentTemplateInput) Result[models.PaymentTemplate] {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found, err := lookup(func() (models.Owner, error) { return s.owners.GetByID(ctx, in.OwnerID) })
	if err != nil {
		return failed[models.PaymentTemplate](err)
	}
	if !found {
		return failure[models.PaymentTemplate](common.ErrorNotFound, "owner not found")
	}
	_, found, err = lookup(func() (models.PaymentCategory, error) { return s.categories.GetByID(ctx, in.CategoryID) })
	if err != nil {
		return failed[models.PaymentTemplate](err)
	}
	if !found {
		return failure[models.PaymentTemplate](common.ErrorNotFound, "category not found")
	}

	t := models.NewPaymentTemplate(in)
	if err := t.Validate(); err != nil {
		return invalid[models.PaymentTemplate](err)
	}
	if err := s.templates.Create(ctx, t); err != nil {
		return failed[models.PaymentTemplate](err)
	}
	return succeed(t)
}

func (s *PaymentTemplateService) Update(ctx context.Context, t models.PaymentTemplate) Result[models.PaymentTemplate] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := t.Validate(); err != nil {
		return invalid[models.PaymentTemplate](err)
	}
	_, found, err := lookup(func() (models.PaymentTemplate, error) { return s.templates.GetByID(ctx, t.ID) })
	if err != nil {
		return failed[models.PaymentTemplate](err)
	}
	if !found {
		return failure[models.PaymentTemplate](common.ErrorNotFound, "payment template not found")
	}
	if err := s.templates.Update(ctx, t); err != nil {
		return failed[models.PaymentTemplate](err)
	}
	return succeed(t)
}

// Delete refuses while payments generated from the template exist.
func (s *PaymentTemplateService) Delete(ctx context.Context, id string) Result[None] {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found, err := lookup(func() (models.PaymentTemplate, error) { return s.templates.GetByID(ctx, id) })
	if err != nil {
		return failed[None](err)
	}
	if !found {
		return failure[None](common.ErrorNotFound, "payment template not found")
	}

	payments, err := s.payments.GetByTemplateID(ctx, id)
	if err != nil {
		return failed[None](err)
	}
	if len(payments) > 0 {
		return failure[None](common.ErrorReferentialIntegrity, "cannot delete the template: payments are linked to it")
	}

	if err := s.templates.Delete(ctx, id); err != nil {
		return failed[None](err)
	}
	return succeed(None{})
}
