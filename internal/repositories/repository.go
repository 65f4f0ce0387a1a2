package repositories

import (
	"context"

	"github.com/dmitrijs2005/famledger/internal/models"
)

// Repository describes CRUD operations over one collection of entities.
type Repository[T models.Entity] interface {
	// GetAll returns the current materialized set in insertion order.
	GetAll(ctx context.Context) ([]T, error)

	// GetByID returns common.ErrorNotFound when no record has the id.
	GetByID(ctx context.Context, id string) (T, error)

	// Create inserts entity. A second Create with the same id replaces it.
	Create(ctx context.Context, entity T) error

	// Update replaces the stored record with the same id.
	Update(ctx context.Context, entity T) error

	// Delete removes the record; deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

type OwnerRepository interface {
	Repository[models.Owner]
}

type BankAccountRepository interface {
	Repository[models.BankAccount]
	GetByOwnerID(ctx context.Context, ownerID string) ([]models.BankAccount, error)
}

type TransactionRepository interface {
	Repository[models.Transaction]
	// GetByAccountID returns transfers where the account is origin or destination.
	GetByAccountID(ctx context.Context, accountID string) ([]models.Transaction, error)
}

type PaymentCategoryRepository interface {
	Repository[models.PaymentCategory]
}

type PaymentTemplateRepository interface {
	Repository[models.PaymentTemplate]
	GetByOwnerID(ctx context.Context, ownerID string) ([]models.PaymentTemplate, error)
	GetByCategoryID(ctx context.Context, categoryID string) ([]models.PaymentTemplate, error)
}

type PaymentRepository interface {
	Repository[models.Payment]
	GetByTemplateID(ctx context.Context, templateID string) ([]models.Payment, error)
	GetByBankAccountID(ctx context.Context, bankAccountID string) ([]models.Payment, error)
	GetByOwnerID(ctx context.Context, ownerID string) ([]models.Payment, error)
	GetByCategoryID(ctx context.Context, categoryID string) ([]models.Payment, error)
}

type PaymentBatchRepository interface {
	Repository[models.PaymentBatch]
	GetByPaymentID(ctx context.Context, paymentID string) ([]models.PaymentBatch, error)
}
