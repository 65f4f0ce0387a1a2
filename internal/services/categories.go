package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
)

type PaymentCategoryService struct {
	mu         *sync.Mutex
	categories repositories.PaymentCategoryRepository
	templates  repositories.PaymentTemplateRepository
	payments   repositories.PaymentRepository
}

func (s *PaymentCategoryService) GetAll(ctx context.Context) ([]models.PaymentCategory, error) {
	return s.categories.GetAll(ctx)
}

func (s *PaymentCategoryService) GetByID(ctx context.Context, id string) (models.PaymentCategory, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *PaymentCategoryService) Create(ctx context.Context, name, color string, description *string) Result[models.PaymentCategory] {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := models.NewPaymentCategory(name, color, description)
	if err := s.categories.Create(ctx, c); err != nil {
		return failed[models.PaymentCategory](err)
	}
	return succeed(c)
}

// Update stamps UpdatedAt; CreatedAt is kept from the stored record.
func (s *PaymentCategoryService) Update(ctx context.Context, c models.PaymentCategory) Result[models.PaymentCategory] {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, found, err := lookup(func() (models.PaymentCategory, error) { return s.categories.GetByID(ctx, c.ID) })
	if err != nil {
		return failed[models.PaymentCategory](err)
	}
	if !found {
		return failure[models.PaymentCategory](common.ErrorNotFound, "category not found")
	}

	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = now()
	if err := c.Validate(); err != nil {
		return invalid[models.PaymentCategory](err)
	}
	if err := s.categories.Update(ctx, c); err != nil {
		return failed[models.PaymentCategory](err)
	}
	return succeed(c)
}

// Delete refuses while templates, then payments, reference the category.
func (s *PaymentCategoryService) Delete(ctx context.Context, id string) Result[None] {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found, err := lookup(func() (models.PaymentCategory, error) { return s.categories.GetByID(ctx, id) })
	if err != nil {
		return failed[None](err)
	}
	if !found {
		return failure[None](common.ErrorNotFound, "category not found")
	}

	templates, err := s.templates.GetByCategoryID(ctx, id)
	if err != nil {
		return failed[None](err)
	}
	if len(templates) > 0 {
		return failure[None](common.ErrorReferentialIntegrity, "cannot delete the category: templates are linked to it")
	}

	payments, err := s.payments.GetByCategoryID(ctx, id)
	if err != nil {
		return failed[None](err)
	}
	if len(payments) > 0 {
		return failure[None](common.ErrorReferentialIntegrity, "cannot delete the category: payments are linked to it")
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return failed[None](err)
	}
	return succeed(None{})
}
