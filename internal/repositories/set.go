package repositories

import (
	"context"

	"github.com/dmitrijs2005/famledger/internal/models"
)

// Bases holds the plain generic repositories a backend provides.
type Bases struct {
	Owners            Repository[models.Owner]
	BankAccounts      Repository[models.BankAccount]
	Transactions      Repository[models.Transaction]
	PaymentCategories Repository[models.PaymentCategory]
	PaymentTemplates  Repository[models.PaymentTemplate]
	Payments          Repository[models.Payment]
	PaymentBatches    Repository[models.PaymentBatch]
}

// Set bundles the per-entity ports of one session.
type Set struct {
	Owners            OwnerRepository
	BankAccounts      BankAccountRepository
	Transactions      TransactionRepository
	PaymentCategories PaymentCategoryRepository
	PaymentTemplates  PaymentTemplateRepository
	Payments          PaymentRepository
	PaymentBatches    PaymentBatchRepository
}

// NewSet adds the secondary lookups on top of b.
func NewSet(b Bases) *Set {
	return &Set{
		Owners:            owners{b.Owners},
		BankAccounts:      bankAccounts{b.BankAccounts},
		Transactions:      transactions{b.Transactions},
		PaymentCategories: paymentCategories{b.PaymentCategories},
		PaymentTemplates:  paymentTemplates{b.PaymentTemplates},
		Payments:          payments{b.Payments},
		PaymentBatches:    paymentBatches{b.PaymentBatches},
	}
}

func filter[T models.Entity](ctx context.Context, r Repository[T], keep func(T) bool) ([]T, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []T
	for _, item := range all {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

type owners struct {
	Repository[models.Owner]
}

type paymentCategories struct {
	Repository[models.PaymentCategory]
}

type bankAccounts struct {
	Repository[models.BankAccount]
}

func (r bankAccounts) GetByOwnerID(ctx context.Context, ownerID string) ([]models.BankAccount, error) {
	return filter(ctx, r.Repository, func(a models.BankAccount) bool { return a.OwnerID == ownerID })
}

type transactions struct {
	Repository[models.Transaction]
}

func (r transactions) GetByAccountID(ctx context.Context, accountID string) ([]models.Transaction, error) {
	return filter(ctx, r.Repository, func(t models.Transaction) bool { return t.Touches(accountID) })
}

type paymentTemplates struct {
	Repository[models.PaymentTemplate]
}

func (r paymentTemplates) GetByOwnerID(ctx context.Context, ownerID string) ([]models.PaymentTemplate, error) {
	return filter(ctx, r.Repository, func(t models.PaymentTemplate) bool { return t.OwnerID == ownerID })
}

func (r paymentTemplates) GetByCategoryID(ctx context.Context, categoryID string) ([]models.PaymentTemplate, error) {
	return filter(ctx, r.Repository, func(t models.PaymentTemplate) bool { return t.CategoryID == categoryID })
}

type payments struct {
	Repository[models.Payment]
}

func (r payments) GetByTemplateID(ctx context.Context, templateID string) ([]models.Payment, error) {
	return filter(ctx, r.Repository, func(p models.Payment) bool { return p.FromTemplate(templateID) })
}

func (r payments) GetByBankAccountID(ctx context.Context, bankAccountID string) ([]models.Payment, error) {
	return filter(ctx, r.Repository, func(p models.Payment) bool { return p.BankAccountID == bankAccountID })
}

func (r payments) GetByOwnerID(ctx context.Context, ownerID string) ([]models.Payment, error) {
	return filter(ctx, r.Repository, func(p models.Payment) bool { return p.OwnerID == ownerID })
}

func (r payments) GetByCategoryID(ctx context.Context, categoryID string) ([]models.Payment, error) {
	return filter(ctx, r.Repository, func(p models.Payment) bool { return p.CategoryID == categoryID })
}

type paymentBatches struct {
	Repository[models.PaymentBatch]
}

func (r paymentBatches) GetByPaymentID(ctx context.Context, paymentID string) ([]models.PaymentBatch, error) {
	return filter(ctx, r.Repository, func(b models.PaymentBatch) bool { return b.Contains(paymentID) })
}
