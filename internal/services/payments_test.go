package services

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentWorld struct {
	*fixture
	alice    models.Owner
	checking models.BankAccount
	housing  models.PaymentCategory
}

func newPaymentWorld(t *testing.T) *paymentWorld {
	f := newFixture(t)
	o := f.owner("Alice")
	return &paymentWorld{
		fixture:  f,
		alice:    o,
		checking: f.account("Checking", 1000, o.ID),
		housing:  f.category("Housing"),
	}
}

func TestPayments_PaidLifecycle(t *testing.T) {
	w := newPaymentWorld(t)

	p := w.payment(120, models.PaymentStatusPaid, w.checking.ID, w.alice.ID, w.housing.ID)
	assert.Equal(t, 880.0, w.balance(w.checking.ID), "paid payment debits on create")

	p.Status = models.PaymentStatusSkipped
	res := w.svc.Payments.Update(w.ctx, p)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 1000.0, w.balance(w.checking.ID), "paid -> skipped credits back")

	stored, err := w.svc.Payments.GetByID(w.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSkipped, stored.Status)

	p.Status = models.PaymentStatusPaid
	require.True(t, w.svc.Payments.Update(w.ctx, p).Success)
	assert.Equal(t, 880.0, w.balance(w.checking.ID), "skipped -> paid debits again")

	require.True(t, w.svc.Payments.Delete(w.ctx, p.ID).Success)
	assert.Equal(t, 1000.0, w.balance(w.checking.ID), "deleting a paid payment credits back")

	res2 := w.svc.Payments.Delete(w.ctx, p.ID)
	assertFailure(t, res2, common.ErrorNotFound, "payment not found")
}

func TestPayments_PendingHasNoEffect(t *testing.T) {
	w := newPaymentWorld(t)

	p := w.payment(50, "", w.checking.ID, w.alice.ID, w.housing.ID)
	assert.Equal(t, models.PaymentStatusPending, p.Status)
	assert.Equal(t, 1000.0, w.balance(w.checking.ID))

	p.Value = 70
	require.True(t, w.svc.Payments.Update(w.ctx, p).Success)
	assert.Equal(t, 1000.0, w.balance(w.checking.ID))

	require.True(t, w.svc.Payments.Delete(w.ctx, p.ID).Success)
	assert.Equal(t, 1000.0, w.balance(w.checking.ID))
}

func TestPayments_UpdateMovesEffectBetweenAccounts(t *testing.T) {
	w := newPaymentWorld(t)
	savings := w.account("Savings", 500, w.alice.ID)

	p := w.payment(100, models.PaymentStatusPaid, w.checking.ID, w.alice.ID, w.housing.ID)
	p.BankAccountID = savings.ID
	require.True(t, w.svc.Payments.Update(w.ctx, p).Success)

	assert.Equal(t, 1000.0, w.balance(w.checking.ID))
	assert.Equal(t, 400.0, w.balance(savings.ID))
}

func TestPayments_UpdateStampsAndKeepsCreatedAt(t *testing.T) {
	w := newPaymentWorld(t)
	p := w.payment(10, models.PaymentStatusPending, w.checking.ID, w.alice.ID, w.housing.ID)
	created := p.CreatedAt

	later := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	freezeNow(t, later)
	p.CreatedAt = time.Time{}
	notes := "called the landlord"
	p.Notes = &notes

	res := w.svc.Payments.Update(w.ctx, p)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, later, res.Data.UpdatedAt)
	assert.True(t, res.Data.CreatedAt.Equal(created))
	require.NotNil(t, res.Data.Notes)
	assert.Equal(t, notes, *res.Data.Notes)
}

func TestPayments_CreateChecksReferencesInOrder(t *testing.T) {
	w := newPaymentWorld(t)
	base := models.CreatePaymentInput{
		PaymentDate: day(2024, time.May, 1), Value: 10,
		BankAccountID: w.checking.ID, OwnerID: w.alice.ID, CategoryID: w.housing.ID,
	}

	in := base
	in.TemplateID = ptr("ghost")
	in.BankAccountID = "ghost"
	assertFailure(t, w.svc.Payments.Create(w.ctx, in), common.ErrorNotFound, "payment template not found")

	in = base
	in.BankAccountID = "ghost"
	in.OwnerID = "ghost"
	assertFailure(t, w.svc.Payments.Create(w.ctx, in), common.ErrorNotFound, "bank account not found")

	in = base
	in.OwnerID = "ghost"
	in.CategoryID = "ghost"
	assertFailure(t, w.svc.Payments.Create(w.ctx, in), common.ErrorNotFound, "owner not found")

	in = base
	in.CategoryID = "ghost"
	assertFailure(t, w.svc.Payments.Create(w.ctx, in), common.ErrorNotFound, "category not found")

	in = base
	in.Status = "refunded"
	assertFailure(t, w.svc.Payments.Create(w.ctx, in), common.ErrorInvalidInput, "")

	all, err := w.svc.Payments.GetAll(w.ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, 1000.0, w.balance(w.checking.ID))
}

func TestPayments_CreateWithTemplate(t *testing.T) {
	w := newPaymentWorld(t)
	tpl := w.template("Rent", 500, ptr(5), w.alice.ID, w.housing.ID)

	res := w.svc.Payments.Create(w.ctx, models.CreatePaymentInput{
		TemplateID: &tpl.ID, PaymentDate: day(2024, time.May, 5), Value: 500,
		BankAccountID: w.checking.ID, OwnerID: w.alice.ID, CategoryID: w.housing.ID,
	})
	require.True(t, res.Success, res.Message)
	assert.True(t, res.Data.FromTemplate(tpl.ID))
}

func TestPayments_UpdateFailures(t *testing.T) {
	w := newPaymentWorld(t)
	p := w.payment(10, models.PaymentStatusPaid, w.checking.ID, w.alice.ID, w.housing.ID)

	ghost := p
	ghost.ID = "ghost"
	assertFailure(t, w.svc.Payments.Update(w.ctx, ghost), common.ErrorNotFound, "payment not found")

	noCat := p
	noCat.CategoryID = "ghost"
	noCat.Status = models.PaymentStatusPending
	assertFailure(t, w.svc.Payments.Update(w.ctx, noCat), common.ErrorNotFound, "category not found")

	badStatus := p
	badStatus.Status = "lost"
	assertFailure(t, w.svc.Payments.Update(w.ctx, badStatus), common.ErrorInvalidInput, "")

	assert.Equal(t, 990.0, w.balance(w.checking.ID), "failed updates leave the balance alone")
}

func TestPayments_GenerateFromTemplates(t *testing.T) {
	w := newPaymentWorld(t)
	rent := w.template("Rent", 500, ptr(31), w.alice.ID, w.housing.ID)
	gym := w.template("Gym", 40, nil, w.alice.ID, w.housing.ID)

	res := w.svc.Payments.GenerateFromTemplates(w.ctx, 2024, time.April, w.checking.ID)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, GenerateSummary{Created: 2, Skipped: 0}, res.Data)

	rentPayments, err := w.set.Payments.GetByTemplateID(w.ctx, rent.ID)
	require.NoError(t, err)
	require.Len(t, rentPayments, 1)
	assert.Equal(t, day(2024, time.April, 30), rentPayments[0].PaymentDate, "day 31 clamps to 30 in April")
	assert.Equal(t, ptr(31), rentPayments[0].DueDateDay)
	assert.Equal(t, w.checking.ID, rentPayments[0].BankAccountID)
	assert.Equal(t, w.alice.ID, rentPayments[0].OwnerID)
	assert.Equal(t, w.housing.ID, rentPayments[0].CategoryID)

	gymPayments, err := w.set.Payments.GetByTemplateID(w.ctx, gym.ID)
	require.NoError(t, err)
	require.Len(t, gymPayments, 1)
	assert.Equal(t, day(2024, time.April, 1), gymPayments[0].PaymentDate, "no due day means the first")
	assert.Equal(t, models.PaymentStatusPending, gymPayments[0].Status)

	again := w.svc.Payments.GenerateFromTemplates(w.ctx, 2024, time.April, w.checking.ID)
	require.True(t, again.Success)
	assert.Equal(t, GenerateSummary{Created: 0, Skipped: 2}, again.Data)

	all, err := w.svc.Payments.GetAll(w.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 1000.0, w.balance(w.checking.ID), "generation never touches balances")

	feb := w.svc.Payments.GenerateFromTemplates(w.ctx, 2024, time.February, w.checking.ID)
	require.True(t, feb.Success)
	rentPayments, _ = w.set.Payments.GetByTemplateID(w.ctx, rent.ID)
	require.Len(t, rentPayments, 2)
	assert.Equal(t, day(2024, time.February, 29), rentPayments[1].PaymentDate, "leap year")
}

func TestPayments_GenerateSkipsTemplatesPaidManually(t *testing.T) {
	w := newPaymentWorld(t)
	rent := w.template("Rent", 500, ptr(5), w.alice.ID, w.housing.ID)

	res := w.svc.Payments.Create(w.ctx, models.CreatePaymentInput{
		TemplateID: &rent.ID, PaymentDate: day(2024, time.July, 20), Value: 480, Status: models.PaymentStatusPaid,
		BankAccountID: w.checking.ID, OwnerID: w.alice.ID, CategoryID: w.housing.ID,
	})
	require.True(t, res.Success)

	gen := w.svc.Payments.GenerateFromTemplates(w.ctx, 2024, time.July, w.checking.ID)
	require.True(t, gen.Success)
	assert.Equal(t, GenerateSummary{Skipped: 1}, gen.Data)

	gen = w.svc.Payments.GenerateFromTemplates(w.ctx, 2025, time.July, w.checking.ID)
	require.True(t, gen.Success)
	assert.Equal(t, GenerateSummary{Created: 1}, gen.Data, "same month of another year is different")
}

func TestPayments_GenerateFailures(t *testing.T) {
	w := newPaymentWorld(t)

	res := w.svc.Payments.GenerateFromTemplates(w.ctx, 2024, time.April, w.checking.ID)
	assertFailure(t, res, common.ErrorNotFound, "no payment templates registered")

	w.template("Rent", 500, ptr(5), w.alice.ID, w.housing.ID)
	res = w.svc.Payments.GenerateFromTemplates(w.ctx, 2024, time.April, "ghost")
	assertFailure(t, res, common.ErrorNotFound, "bank account not found")

	res = w.svc.Payments.GenerateFromTemplates(w.ctx, 2024, time.Month(13), w.checking.ID)
	assertFailure(t, res, common.ErrorInvalidInput, "month 13 out of range 1..12")
}

func TestDueDate(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		due   *int
		want  time.Time
	}{
		{2024, time.January, ptr(15), day(2024, time.January, 15)},
		{2023, time.February, ptr(30), day(2023, time.February, 28)},
		{2024, time.December, ptr(31), day(2024, time.December, 31)},
		{2024, time.June, nil, day(2024, time.June, 1)},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, dueDate(c.year, c.month, c.due))
	}
}
