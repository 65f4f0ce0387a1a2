package remote

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
	"github.com/dmitrijs2005/famledger/internal/storage/docstore"
	"golang.org/x/sync/errgroup"
)

type loader interface {
	Initialize(ctx context.Context) error
	Ready() bool
}

// Backend is the set of remote collections for one data owner.
type Backend struct {
	set     *repositories.Set
	loaders []loader
}

func NewBackend(store docstore.Store, queue Queue, ownerUID string, codecs repositories.Codecs, logger logging.Logger) *Backend {
	owners := NewRepository[models.Owner](store, queue, ownerUID, common.CollectionOwners, codecs.Owners, logger)
	accounts := NewRepository[models.BankAccount](store, queue, ownerUID, common.CollectionBankAccounts, codecs.BankAccounts, logger)
	transactions := NewRepository[models.Transaction](store, queue, ownerUID, common.CollectionTransactions, codecs.Transactions, logger)
	categories := NewRepository[models.PaymentCategory](store, queue, ownerUID, common.CollectionPaymentCategories, codecs.PaymentCategories, logger)
	templates := NewRepository[models.PaymentTemplate](store, queue, ownerUID, common.CollectionPaymentTemplates, codecs.PaymentTemplates, logger)
	payments := NewRepository[models.Payment](store, queue, ownerUID, common.CollectionPayments, codecs.Payments, logger)
	batches := NewRepository[models.PaymentBatch](store, queue, ownerUID, common.CollectionPaymentBatches, codecs.PaymentBatches, logger)

	return &Backend{
		set: repositories.NewSet(repositories.Bases{
			Owners:            owners,
			BankAccounts:      accounts,
			Transactions:      transactions,
			PaymentCategories: categories,
			PaymentTemplates:  templates,
			Payments:          payments,
			PaymentBatches:    batches,
		}),
		loaders: []loader{owners, accounts, transactions, categories, templates, payments, batches},
	}
}

// Set returns the repositories. They report common.ErrorNotReady until
// Initialize succeeds.
func (b *Backend) Set() *repositories.Set {
	return b.set
}

// Initialize loads every collection concurrently.
func (b *Backend) Initialize(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, l := range b.loaders {
		g.Go(func() error {
			return l.Initialize(ctx)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("remote initialization failed: %w", err)
	}
	return nil
}

// Ready reports whether every collection has been loaded.
func (b *Backend) Ready() bool {
	for _, l := range b.loaders {
		if !l.Ready() {
			return false
		}
	}
	return true
}
