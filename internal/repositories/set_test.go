package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceRepo is a minimal Repository used to exercise the lookups.
type sliceRepo[T models.Entity] struct {
	items []T
	err   error
}

func (r *sliceRepo[T]) GetAll(context.Context) ([]T, error) { return r.items, r.err }

func (r *sliceRepo[T]) GetByID(_ context.Context, id string) (T, error) {
	for _, it := range r.items {
		if it.EntityID() == id {
			return it, nil
		}
	}
	var zero T
	return zero, common.ErrorNotFound
}

func (r *sliceRepo[T]) Create(_ context.Context, e T) error  { r.items = append(r.items, e); return nil }
func (r *sliceRepo[T]) Update(context.Context, T) error      { return nil }
func (r *sliceRepo[T]) Delete(context.Context, string) error { return nil }

func ptr[T any](v T) *T { return &v }

func TestSet_Lookups(t *testing.T) {
	ctx := context.Background()

	set := NewSet(Bases{
		Owners: &sliceRepo[models.Owner]{},
		BankAccounts: &sliceRepo[models.BankAccount]{items: []models.BankAccount{
			{ID: "a1", OwnerID: "o1"}, {ID: "a2", OwnerID: "o2"}, {ID: "a3", OwnerID: "o1"},
		}},
		Transactions: &sliceRepo[models.Transaction]{items: []models.Transaction{
			{ID: "t1", OriginAccountID: "a1", DestinationAccountID: "a2"},
			{ID: "t2", OriginAccountID: "a2", DestinationAccountID: "a3"},
		}},
		PaymentCategories: &sliceRepo[models.PaymentCategory]{},
		PaymentTemplates: &sliceRepo[models.PaymentTemplate]{items: []models.PaymentTemplate{
			{ID: "tp1", OwnerID: "o1", CategoryID: "c1"}, {ID: "tp2", OwnerID: "o2", CategoryID: "c1"},
		}},
		Payments: &sliceRepo[models.Payment]{items: []models.Payment{
			{ID: "p1", TemplateID: ptr("tp1"), BankAccountID: "a1", OwnerID: "o1", CategoryID: "c1"},
			{ID: "p2", BankAccountID: "a2", OwnerID: "o2", CategoryID: "c2"},
		}},
		PaymentBatches: &sliceRepo[models.PaymentBatch]{items: []models.PaymentBatch{
			{ID: "b1", PaymentIDs: []string{"p1", "p2"}}, {ID: "b2", PaymentIDs: []string{"p2"}},
		}},
	})

	accounts, err := set.BankAccounts.GetByOwnerID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a3"}, ids(accounts))

	txs, err := set.Transactions.GetByAccountID(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, ids(txs))

	tpls, err := set.PaymentTemplates.GetByCategoryID(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, tpls, 2)
	tpls, err = set.PaymentTemplates.GetByOwnerID(ctx, "o2")
	require.NoError(t, err)
	assert.Equal(t, []string{"tp2"}, ids(tpls))

	pays, err := set.Payments.GetByTemplateID(ctx, "tp1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(pays))
	pays, err = set.Payments.GetByBankAccountID(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, ids(pays))
	pays, err = set.Payments.GetByOwnerID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids(pays))
	pays, err = set.Payments.GetByCategoryID(ctx, "c9")
	require.NoError(t, err)
	assert.Empty(t, pays)

	batches, err := set.PaymentBatches.GetByPaymentID(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2"}, ids(batches))
}

func TestSet_LookupPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	set := NewSet(Bases{BankAccounts: &sliceRepo[models.BankAccount]{err: boom}})

	_, err := set.BankAccounts.GetByOwnerID(context.Background(), "o1")
	require.ErrorIs(t, err, boom)
}

func ids[T models.Entity](items []T) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.EntityID())
	}
	return out
}
