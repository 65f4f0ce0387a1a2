package services

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
)

// DefaultPaymentLabel describes a settled payment whose template is gone.
const DefaultPaymentLabel = "Payment"

type BankAccountHistoryService struct {
	transactions repositories.TransactionRepository
	payments     repositories.PaymentRepository
	templates    repositories.PaymentTemplateRepository
}

// GetByAccountID merges transfers and settled payments of the account,
// newest first. It is recomputed from the repositories on every call.
func (s *BankAccountHistoryService) GetByAccountID(ctx context.Context, accountID string) ([]models.BalanceHistoryEntry, error) {
	transactions, err := s.transactions.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.GetByBankAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.BalanceHistoryEntry, 0, len(transactions)+len(payments))
	for _, t := range transactions {
		isOrigin := t.OriginAccountID == accountID
		amount, target := t.Amount, t.OriginAccountID
		if isOrigin {
			amount, target = -t.Amount, t.DestinationAccountID
		}
		entries = append(entries, models.BalanceHistoryEntry{
			ID:              t.ID,
			Date:            t.Date,
			Type:            models.HistoryEntryTransaction,
			Description:     t.Name,
			Amount:          amount,
			TargetAccountID: &target,
		})
	}

	for _, p := range payments {
		if !p.IsPaid() {
			continue
		}
		label := DefaultPaymentLabel
		if p.TemplateID != nil {
			t, found, err := lookup(func() (models.PaymentTemplate, error) { return s.templates.GetByID(ctx, *p.TemplateID) })
			if err != nil {
				return nil, err
			}
			if found {
				label = t.Name
			}
		}
		entries = append(entries, models.BalanceHistoryEntry{
			ID:          p.ID,
			Date:        p.PaymentDate,
			Type:        models.HistoryEntryPayment,
			Description: label,
			Amount:      -p.Value,
		})
	}

	slices.SortStableFunc(entries, func(a, b models.BalanceHistoryEntry) int {
		return b.Date.Compare(a.Date)
	})
	return entries, nil
}
