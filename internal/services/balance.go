package services

import (
	"context"

	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
)

// Direction of a balance effect.
const (
	apply   = 1.0
	reverse = -1.0
)

// ledger applies balance effects to accounts. An effect on an account that
// no longer exists is skipped.
type ledger struct {
	accounts repositories.BankAccountRepository
	logger   logging.Logger
}

func (l ledger) adjust(ctx context.Context, accountID string, delta float64) error {
	account, found, err := lookup(func() (models.BankAccount, error) { return l.accounts.GetByID(ctx, accountID) })
	if err != nil {
		return err
	}
	if !found {
		l.logger.Warn(ctx, "balance effect skipped, account missing", "account_id", accountID, "delta", delta)
		return nil
	}
	account.CurrentBalance += delta
	return l.accounts.Update(ctx, account)
}

// transfer debits the origin and credits the destination (direction apply).
func (l ledger) transfer(ctx context.Context, t models.Transaction, direction float64) error {
	if err := l.adjust(ctx, t.OriginAccountID, -direction*t.Amount); err != nil {
		return err
	}
	return l.adjust(ctx, t.DestinationAccountID, direction*t.Amount)
}

// payment debits the linked account when p is paid (direction apply).
func (l ledger) payment(ctx context.Context, p models.Payment, direction float64) error {
	if !p.IsPaid() {
		return nil
	}
	return l.adjust(ctx, p.BankAccountID, -direction*p.Value)
}
