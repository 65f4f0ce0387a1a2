// Package migrate copies a household's books between backends, typically
// from the local store of a single machine to the shared remote store.
package migrate

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
)

// Result counts the records written per collection.
type Result struct {
	Owners            int `json:"owners"`
	BankAccounts      int `json:"bankAccounts"`
	Transactions      int `json:"transactions"`
	PaymentCategories int `json:"paymentCategories"`
	PaymentTemplates  int `json:"paymentTemplates"`
	Payments          int `json:"payments"`
	PaymentBatches    int `json:"paymentBatches"`
	Total             int `json:"total"`
}

// Collections creates every record of src in dst, keeping ids. Records
// already present in dst are replaced, so a rerun is harmless. On error the
// counts of the collections copied so far are returned with it.
func Collections(ctx context.Context, src, dst *repositories.Set) (Result, error) {
	var res Result
	steps := []struct {
		collection string
		count      *int
		run        func() (int, error)
	}{
		{common.CollectionOwners, &res.Owners, func() (int, error) {
			return copyAll[models.Owner](ctx, src.Owners, dst.Owners)
		}},
		{common.CollectionBankAccounts, &res.BankAccounts, func() (int, error) {
			return copyAll[models.BankAccount](ctx, src.BankAccounts, dst.BankAccounts)
		}},
		{common.CollectionTransactions, &res.Transactions, func() (int, error) {
			return copyAll[models.Transaction](ctx, src.Transactions, dst.Transactions)
		}},
		{common.CollectionPaymentCategories, &res.PaymentCategories, func() (int, error) {
			return copyAll[models.PaymentCategory](ctx, src.PaymentCategories, dst.PaymentCategories)
		}},
		{common.CollectionPaymentTemplates, &res.PaymentTemplates, func() (int, error) {
			return copyAll[models.PaymentTemplate](ctx, src.PaymentTemplates, dst.PaymentTemplates)
		}},
		{common.CollectionPayments, &res.Payments, func() (int, error) {
			return copyAll[models.Payment](ctx, src.Payments, dst.Payments)
		}},
		{common.CollectionPaymentBatches, &res.PaymentBatches, func() (int, error) {
			return copyAll[models.PaymentBatch](ctx, src.PaymentBatches, dst.PaymentBatches)
		}},
	}

	for _, step := range steps {
		n, err := step.run()
		*step.count = n
		res.Total += n
		if err != nil {
			return res, fmt.Errorf("migrate %s: %w", step.collection, err)
		}
	}
	return res, nil
}

func copyAll[T models.Entity](ctx context.Context, src, dst repositories.Repository[T]) (int, error) {
	items, err := src.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := dst.Create(ctx, item); err != nil {
			return i, fmt.Errorf("record %s: %w", item.EntityID(), err)
		}
	}
	return len(items), nil
}
