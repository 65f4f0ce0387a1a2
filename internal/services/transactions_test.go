package services

import (
	"math/rand"
	"testing"
	"time"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactions_CreateMovesMoney(t *testing.T) {
	f := newFixture(t)
	alice := f.owner("Alice")
	a := f.account("A", 1000, alice.ID)
	b := f.account("B", 50, alice.ID)

	tx := f.transfer(200, a.ID, b.ID)
	assert.Equal(t, 800.0, f.balance(a.ID))
	assert.Equal(t, 250.0, f.balance(b.ID))

	got, err := f.svc.Transactions.GetByID(f.ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx, got)
}

func TestTransactions_CreateRequiresBothAccounts(t *testing.T) {
	f := newFixture(t)
	alice := f.owner("Alice")
	a := f.account("A", 1000, alice.ID)

	for _, in := range []models.CreateTransactionInput{
		{Name: "x", Amount: 1, OriginAccountID: a.ID, DestinationAccountID: "ghost", Date: day(2024, 1, 1)},
		{Name: "x", Amount: 1, OriginAccountID: "ghost", DestinationAccountID: a.ID, Date: day(2024, 1, 1)},
	} {
		res := f.svc.Transactions.Create(f.ctx, in)
		assertFailure(t, res, common.ErrorNotFound, "origin or destination account not found")
	}
	assert.Equal(t, 1000.0, f.balance(a.ID))

	all, err := f.svc.Transactions.GetAll(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTransactions_CreateThenDeleteRestoresBalances(t *testing.T) {
	f := newFixture(t)
	alice := f.owner("Alice")
	a := f.account("A", 123.45, alice.ID)
	b := f.account("B", 10, alice.ID)

	tx := f.transfer(23.45, a.ID, b.ID)
	res := f.svc.Transactions.Delete(f.ctx, tx.ID)
	require.True(t, res.Success, res.Message)

	assert.Equal(t, 123.45, f.balance(a.ID))
	assert.Equal(t, 10.0, f.balance(b.ID))

	res = f.svc.Transactions.Delete(f.ctx, tx.ID)
	assertFailure(t, res, common.ErrorNotFound, "transaction not found")
}

func TestTransactions_UpdateReversesThenApplies(t *testing.T) {
	f := newFixture(t)
	alice := f.owner("Alice")
	a := f.account("A", 100, alice.ID)
	b := f.account("B", 100, alice.ID)
	c := f.account("C", 100, alice.ID)
	tx := f.transfer(30, a.ID, b.ID)

	// flip direction and change amount
	tx.OriginAccountID, tx.DestinationAccountID, tx.Amount = b.ID, a.ID, 10
	res := f.svc.Transactions.Update(f.ctx, tx)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 110.0, f.balance(a.ID))
	assert.Equal(t, 90.0, f.balance(b.ID))

	// move the destination to another account
	tx.DestinationAccountID = c.ID
	require.True(t, f.svc.Transactions.Update(f.ctx, tx).Success)
	assert.Equal(t, 100.0, f.balance(a.ID))
	assert.Equal(t, 90.0, f.balance(b.ID))
	assert.Equal(t, 110.0, f.balance(c.ID))

	stored, err := f.svc.Transactions.GetByID(f.ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, stored.DestinationAccountID)

	res = f.svc.Transactions.Update(f.ctx, models.Transaction{
		ID: "ghost", Name: "x", OriginAccountID: a.ID, DestinationAccountID: b.ID, Date: day(2024, 1, 1),
	})
	assertFailure(t, res, common.ErrorNotFound, "transaction not found")

	res = f.svc.Transactions.Update(f.ctx, models.Transaction{ID: tx.ID})
	assertFailure(t, res, common.ErrorInvalidInput, "")
	assert.Equal(t, 110.0, f.balance(c.ID), "invalid update changes nothing")
}

func TestTransactions_NegativeAmountIsAccepted(t *testing.T) {
	f := newFixture(t)
	alice := f.owner("Alice")
	a := f.account("A", 100, alice.ID)
	b := f.account("B", 100, alice.ID)

	f.transfer(-25, a.ID, b.ID)
	assert.Equal(t, 125.0, f.balance(a.ID))
	assert.Equal(t, 75.0, f.balance(b.ID))
}

func TestTransactions_PairBalanceIsConserved(t *testing.T) {
	f := newFixture(t)
	alice := f.owner("Alice")
	a := f.account("A", 500, alice.ID)
	b := f.account("B", 300, alice.ID)
	total := 800.0

	rng := rand.New(rand.NewSource(42))
	var live []models.Transaction

	for i := 0; i < 200; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			from, to := a.ID, b.ID
			if rng.Intn(2) == 0 {
				from, to = to, from
			}
			live = append(live, f.transfer(float64(rng.Intn(10000))/100, from, to))
		case op == 1:
			k := rng.Intn(len(live))
			tx := live[k]
			tx.Amount = float64(rng.Intn(10000)) / 100
			if rng.Intn(2) == 0 {
				tx.OriginAccountID, tx.DestinationAccountID = tx.DestinationAccountID, tx.OriginAccountID
			}
			tx.Date = tx.Date.Add(time.Hour)
			require.True(t, f.svc.Transactions.Update(f.ctx, tx).Success)
			live[k] = tx
		default:
			k := rng.Intn(len(live))
			require.True(t, f.svc.Transactions.Delete(f.ctx, live[k].ID).Success)
			live = append(live[:k], live[k+1:]...)
		}

		assert.InDelta(t, total, f.balance(a.ID)+f.balance(b.ID), 1e-6, "step %d", i)
	}

	for _, tx := range live {
		require.True(t, f.svc.Transactions.Delete(f.ctx, tx.ID).Success)
	}
	assert.InDelta(t, 500.0, f.balance(a.ID), 1e-6)
	assert.InDelta(t, 300.0, f.balance(b.ID), 1e-6)
}
