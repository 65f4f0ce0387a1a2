// Package services holds the bookkeeping use cases: owners, accounts,
// transfers, payments and their templates, categories, batch settlement and
// account history.
//
// Mutating operations never return a Go error; they return a Result whose
// Message can be shown to the user as is and whose Err wraps one of the
// common sentinels for programmatic handling. Balance effects are applied
// incrementally to BankAccount.CurrentBalance.
//
// All mutations of one Services bundle are serialized, so concurrent HTTP
// requests on the same books cannot interleave read-modify-write cycles on
// an account balance.
package services

import (
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/repositories"
)

// now is a test seam for updatedAt stamps.
var now = func() time.Time { return time.Now().UTC() }

type Services struct {
	Owners       *OwnerService
	BankAccounts *BankAccountService
	Transactions *TransactionService
	Payments     *PaymentService
	Templates    *PaymentTemplateService
	Categories   *PaymentCategoryService
	Batches      *PaymentBatchService
	History      *BankAccountHistoryService
}

// New wires every use case to set.
func New(set *repositories.Set, logger logging.Logger) *Services {
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.With("component", "services")
	mu := &sync.Mutex{}
	l := ledger{accounts: set.BankAccounts, logger: logger}

	return &Services{
		Owners: &OwnerService{
			mu: mu, owners: set.Owners, accounts: set.BankAccounts,
			templates: set.PaymentTemplates, payments: set.Payments,
		},
		BankAccounts: &BankAccountService{
			mu: mu, accounts: set.BankAccounts, owners: set.Owners, transactions: set.Transactions,
		},
		Transactions: &TransactionService{
			mu: mu, transactions: set.Transactions, accounts: set.BankAccounts, ledger: l,
		},
		Payments: &PaymentService{
			mu: mu, payments: set.Payments, templates: set.PaymentTemplates, accounts: set.BankAccounts,
			owners: set.Owners, categories: set.PaymentCategories, ledger: l, logger: logger,
		},
		Templates: &PaymentTemplateService{
			mu: mu, templates: set.PaymentTemplates, owners: set.Owners,
			categories: set.PaymentCategories, payments: set.Payments,
		},
		Categories: &PaymentCategoryService{
			mu: mu, categories: set.PaymentCategories, templates: set.PaymentTemplates, payments: set.Payments,
		},
		Batches: &PaymentBatchService{
			mu: mu, batches: set.PaymentBatches, payments: set.Payments, ledger: l,
		},
		History: &BankAccountHistoryService{
			transactions: set.Transactions, payments: set.Payments, templates: set.PaymentTemplates,
		},
	}
}

// lookup turns ErrorNotFound into found == false.
func lookup[T any](get func() (T, error)) (value T, found bool, err error) {
	value, err = get()
	if errors.Is(err, common.ErrorNotFound) {
		return value, false, nil
	}
	if err != nil {
		return value, false, err
	}
	return value, true, nil
}
