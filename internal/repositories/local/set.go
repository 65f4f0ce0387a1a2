package local

import (
	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
	"github.com/dmitrijs2005/famledger/internal/storage/kv"
)

// DefaultPrefix namespaces snapshot keys when none is configured.
const DefaultPrefix = "famledger"

// NewSet builds the seven collections over store, keyed "<prefix>:<collection>".
func NewSet(store kv.Store, prefix string, codecs repositories.Codecs, logger logging.Logger) *repositories.Set {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return repositories.NewSet(repositories.Bases{
		Owners:            NewRepository[models.Owner](store, Key(prefix, common.CollectionOwners), codecs.Owners, logger),
		BankAccounts:      NewRepository[models.BankAccount](store, Key(prefix, common.CollectionBankAccounts), codecs.BankAccounts, logger),
		Transactions:      NewRepository[models.Transaction](store, Key(prefix, common.CollectionTransactions), codecs.Transactions, logger),
		PaymentCategories: NewRepository[models.PaymentCategory](store, Key(prefix, common.CollectionPaymentCategories), codecs.PaymentCategories, logger),
		PaymentTemplates:  NewRepository[models.PaymentTemplate](store, Key(prefix, common.CollectionPaymentTemplates), codecs.PaymentTemplates, logger),
		Payments:          NewRepository[models.Payment](store, Key(prefix, common.CollectionPayments), codecs.Payments, logger),
		PaymentBatches:    NewRepository[models.PaymentBatch](store, Key(prefix, common.CollectionPaymentBatches), codecs.PaymentBatches, logger),
	})
}
