package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
)

type PaymentService struct {
	mu         *sync.Mutex
	payments   repositories.PaymentRepository
	templates  repositories.PaymentTemplateRepository
	accounts   repositories.BankAccountRepository
	owners     repositories.OwnerRepository
	categories repositories.PaymentCategoryRepository
	ledger     ledger
	logger     logging.Logger
}

// GenerateSummary counts the templates handled by GenerateFromTemplates.
type GenerateSummary struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

func (s *PaymentService) GetAll(ctx context.Context) ([]models.Payment, error) {
	return s.payments.GetAll(ctx)
}

func (s *PaymentService) GetByID(ctx context.Context, id string) (models.Payment, error) {
	return s.payments.GetByID(ctx, id)
}

// Create checks the template (when one is given), account, owner and
// category in that order. Only a payment created as paid touches the
// account balance.
func (s *PaymentService) Create(ctx context.Context, in models.CreatePaymentInput) Result[models.Payment] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.TemplateID != nil && *in.TemplateID != "" {
		_, found, err := lookup(func() (models.PaymentTemplate, error) { return s.templates.GetByID(ctx, *in.TemplateID) })
		if err != nil {
			return failed[models.Payment](err)
		}
		if !found {
			return failure[models.Payment](common.ErrorNotFound, "payment template not found")
		}
	}
	_, found, err := lookup(func() (models.BankAccount, error) { return s.accounts.GetByID(ctx, in.BankAccountID) })
	if err != nil {
		return failed[models.Payment](err)
	}
	if !found {
		return failure[models.Payment](common.ErrorNotFound, "bank account not found")
	}
	_, found, err = lookup(func() (models.Owner, error) { return s.owners.GetByID(ctx, in.OwnerID) })
	if err != nil {
		return failed[models.Payment](err)
	}
	if !found {
		return failure[models.Payment](common.ErrorNotFound, "owner not found")
	}
	_, found, err = lookup(func() (models.PaymentCategory, error) { return s.categories.GetByID(ctx, in.CategoryID) })
	if err != nil {
		return failed[models.Payment](err)
	}
	if !found {
		return failure[models.Payment](common.ErrorNotFound, "category not found")
	}

	p := models.NewPayment(in)
	if err := p.Validate(); err != nil {
		return invalid[models.Payment](err)
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return failed[models.Payment](err)
	}
	if err := s.ledger.payment(ctx, p, apply); err != nil {
		return failed[models.Payment](err)
	}
	return succeed(p)
}

// Update handles status transitions both ways: the stored record's effect
// is reversed before the new one is applied.
func (s *PaymentService) Update(ctx context.Context, p models.Payment) Result[models.Payment] {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, found, err := lookup(func() (models.Payment, error) { return s.payments.GetByID(ctx, p.ID) })
	if err != nil {
		return failed[models.Payment](err)
	}
	if !found {
		return failure[models.Payment](common.ErrorNotFound, "payment not found")
	}
	_, found, err = lookup(func() (models.PaymentCategory, error) { return s.categories.GetByID(ctx, p.CategoryID) })
	if err != nil {
		return failed[models.Payment](err)
	}
	if !found {
		return failure[models.Payment](common.ErrorNotFound, "category not found")
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = now()
	if err := p.Validate(); err != nil {
		return invalid[models.Payment](err)
	}

	if err := s.ledger.payment(ctx, existing, reverse); err != nil {
		return failed[models.Payment](err)
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return failed[models.Payment](err)
	}
	if err := s.ledger.payment(ctx, p, apply); err != nil {
		return failed[models.Payment](err)
	}
	return succeed(p)
}

func (s *PaymentService) Delete(ctx context.Context, id string) Result[None] {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, found, err := lookup(func() (models.Payment, error) { return s.payments.GetByID(ctx, id) })
	if err != nil {
		return failed[None](err)
	}
	if !found {
		return failure[None](common.ErrorNotFound, "payment not found")
	}

	if err := s.ledger.payment(ctx, existing, reverse); err != nil {
		return failed[None](err)
	}
	if err := s.payments.Delete(ctx, id); err != nil {
		return failed[None](err)
	}
	return succeed(None{})
}

// GenerateFromTemplates creates one pending payment per template for the
// given month, charged to bankAccountID. Templates that already have a
// payment dated in that month are skipped, so repeated calls are harmless.
func (s *PaymentService) GenerateFromTemplates(ctx context.Context, year int, month time.Month, bankAccountID string) Result[GenerateSummary] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if month < time.January || month > time.December {
		return failure[GenerateSummary](common.ErrorInvalidInput, "month %d out of range 1..12", int(month))
	}

	_, found, err := lookup(func() (models.BankAccount, error) { return s.accounts.GetByID(ctx, bankAccountID) })
	if err != nil {
		return failed[GenerateSummary](err)
	}
	if !found {
		return failure[GenerateSummary](common.ErrorNotFound, "bank account not found")
	}

	templates, err := s.templates.GetAll(ctx)
	if err != nil {
		return failed[GenerateSummary](err)
	}
	if len(templates) == 0 {
		return failure[GenerateSummary](common.ErrorNotFound, "no payment templates registered")
	}

	existing, err := s.payments.GetAll(ctx)
	if err != nil {
		return failed[GenerateSummary](err)
	}

	var summary GenerateSummary
	for _, t := range templates {
		if hasPaymentInMonth(existing, t.ID, year, month) {
			summary.Skipped++
			continue
		}

		templateID := t.ID
		p := models.NewPayment(models.CreatePaymentInput{
			TemplateID:    &templateID,
			PaymentDate:   dueDate(year, month, t.DueDateDay),
			DueDateDay:    t.DueDateDay,
			Value:         t.Value,
			Status:        models.PaymentStatusPending,
			BankAccountID: bankAccountID,
			OwnerID:       t.OwnerID,
			CategoryID:    t.CategoryID,
		})
		if err := s.payments.Create(ctx, p); err != nil {
			s.logger.Error(ctx, "payment generation stopped", "template_id", t.ID, "created", summary.Created, "error", err)
			res := failed[GenerateSummary](err)
			res.Data = summary
			return res
		}
		summary.Created++
	}
	return succeed(summary)
}

func hasPaymentInMonth(payments []models.Payment, templateID string, year int, month time.Month) bool {
	for _, p := range payments {
		if p.FromTemplate(templateID) && p.PaymentDate.Year() == year && p.PaymentDate.Month() == month {
			return true
		}
	}
	return false
}

// dueDate clamps the due day to the month's length; no due day means the 1st.
func dueDate(year int, month time.Month, dueDay *int) time.Time {
	day := 1
	if dueDay != nil && *dueDay > 0 {
		lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
		day = min(*dueDay, lastDay)
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
