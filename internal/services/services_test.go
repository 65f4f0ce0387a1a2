package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/dmitrijs2005/famledger/internal/repositories"
	"github.com/dmitrijs2005/famledger/internal/repositories/local"
	"github.com/dmitrijs2005/famledger/internal/repositories/remote"
	"github.com/dmitrijs2005/famledger/internal/storage/docstore"
	"github.com/dmitrijs2005/famledger/internal/storage/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	t   *testing.T
	ctx context.Context
	set *repositories.Set
	svc *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	set := local.NewSet(kv.NewMemoryStore(), "test", repositories.DefaultCodecs(nil), logging.Discard())
	return &fixture{t: t, ctx: context.Background(), set: set, svc: New(set, logging.Discard())}
}

func ptr[T any](v T) *T { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fixture) owner(name string) models.Owner {
	f.t.Helper()
	res := f.svc.Owners.Create(f.ctx, name)
	require.True(f.t, res.Success, res.Message)
	return res.Data
}

func (f *fixture) account(name string, initial float64, ownerID string) models.BankAccount {
	f.t.Helper()
	res := f.svc.BankAccounts.Create(f.ctx, name, initial, ownerID)
	require.True(f.t, res.Success, res.Message)
	return res.Data
}

func (f *fixture) category(name string) models.PaymentCategory {
	f.t.Helper()
	res := f.svc.Categories.Create(f.ctx, name, "#336699", nil)
	require.True(f.t, res.Success, res.Message)
	return res.Data
}

func (f *fixture) template(name string, value float64, dueDay *int, ownerID, categoryID string) models.PaymentTemplate {
	f.t.Helper()
	res := f.svc.Templates.Create(f.ctx, models.CreatePaymentTemplateInput{
		Name: name, Value: value, DueDateDay: dueDay, OwnerID: ownerID, CategoryID: categoryID,
	})
	require.True(f.t, res.Success, res.Message)
	return res.Data
}

func (f *fixture) payment(value float64, status models.PaymentStatus, accountID, ownerID, categoryID string) models.Payment {
	f.t.Helper()
	res := f.svc.Payments.Create(f.ctx, models.CreatePaymentInput{
		PaymentDate: day(2024, time.March, 10), Value: value, Status: status,
		BankAccountID: accountID, OwnerID: ownerID, CategoryID: categoryID,
	})
	require.True(f.t, res.Success, res.Message)
	return res.Data
}

func (f *fixture) transfer(amount float64, from, to string) models.Transaction {
	f.t.Helper()
	res := f.svc.Transactions.Create(f.ctx, models.CreateTransactionInput{
		Name: "transfer", Amount: amount, OriginAccountID: from, DestinationAccountID: to, Date: day(2024, time.March, 1),
	})
	require.True(f.t, res.Success, res.Message)
	return res.Data
}

func (f *fixture) balance(accountID string) float64 {
	f.t.Helper()
	a, err := f.svc.BankAccounts.GetByID(f.ctx, accountID)
	require.NoError(f.t, err)
	return a.CurrentBalance
}

// freezeNow pins the clock used for updatedAt stamps.
func freezeNow(t *testing.T, at time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = orig })
}

func assertFailure[T any](t *testing.T, res Result[T], kind error, message string) {
	t.Helper()
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, kind)
	if message != "" {
		assert.Equal(t, message, res.Message)
	}
}

// Example from the product description: generate a month, then settle it.
func TestScenario_RentGeneratedAndSettled(t *testing.T) {
	f := newFixture(t)
	alice := f.owner("Alice")
	checking := f.account("Checking", 1000, alice.ID)
	housing := f.category("Housing")
	rent := f.template("Rent", 500, ptr(5), alice.ID, housing.ID)

	gen := f.svc.Payments.GenerateFromTemplates(f.ctx, 2024, time.June, checking.ID)
	require.True(t, gen.Success, gen.Message)
	assert.Equal(t, GenerateSummary{Created: 1}, gen.Data)

	payments, err := f.set.Payments.GetByTemplateID(f.ctx, rent.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	p := payments[0]
	assert.Equal(t, day(2024, time.June, 5), p.PaymentDate)
	assert.Equal(t, 500.0, p.Value)
	assert.Equal(t, models.PaymentStatusPending, p.Status)
	assert.Equal(t, 1000.0, f.balance(checking.ID))

	batch := f.svc.Batches.Create(f.ctx, models.CreatePaymentBatchInput{
		Name: "June bills", Date: day(2024, time.June, 6), PaymentIDs: []string{p.ID},
	})
	require.True(t, batch.Success, batch.Message)

	assert.Equal(t, 500.0, f.balance(checking.ID))
	settled, err := f.svc.Payments.GetByID(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, settled.Status)

	history, err := f.svc.History.GetByAccountID(f.ctx, checking.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Rent", history[0].Description)
	assert.Equal(t, -500.0, history[0].Amount)
}

func TestResult_NotReadyBackend(t *testing.T) {
	backend := remote.NewBackend(docstore.NewMemoryStore(), nil, "alice", repositories.DefaultCodecs(nil), logging.Discard())
	svc := New(backend.Set(), nil)
	ctx := context.Background()

	res := svc.Owners.Create(ctx, "Alice")
	assertFailure(t, res, common.ErrorNotReady, "data is still loading, try again shortly")

	_, err := svc.BankAccounts.GetAll(ctx)
	require.ErrorIs(t, err, common.ErrorNotReady)

	_, err = svc.History.GetByAccountID(ctx, "a1")
	require.ErrorIs(t, err, common.ErrorNotReady)
}
