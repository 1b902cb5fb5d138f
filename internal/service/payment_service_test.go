package service

import (
	"bytes"
	"testing"

	"trainingdesk/internal/apperr"
	"trainingdesk/internal/model"
	"trainingdesk/internal/rbac"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// appliedTrainer returns a level-L1 trainer (500 per day) with an application
// for a training lasting days calendar days.
func appliedTrainer(t *testing.T, f *fixture, days int) (rbac.Actor, *model.TrainingApplication) {
	t.Helper()
	trainer := f.actor(t, model.RoleTrainer)
	f.level(t, trainer, "L1")
	tr := f.training(t, trainer, day("2024-05-10"), days)
	app, err := f.applicationService().Apply(f.ctx, trainer, tr.ID)
	require.NoError(t, err)
	return trainer, app
}

func TestRequestPaymentComputesAmount(t *testing.T) {
	cases := []struct {
		name   string
		days   int
		amount int64
		billed int
	}{
		{"same day", 0, 500, 1},
		{"four days", 4, 2000, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.rate(t, "L1", 500)
			trainer, app := appliedTrainer(t, f, tc.days)

			payment, err := f.paymentService().RequestPayment(f.ctx, trainer, app.ID)
			require.NoError(t, err)
			assert.True(t, decimal.NewFromInt(tc.amount).Equal(payment.Amount), payment.Amount.String())
			assert.Equal(t, tc.billed, payment.ServiceDays)
			assert.Equal(t, model.PaymentPending, payment.Status)
			assert.Equal(t, app.Training.Code, payment.Reason)
			assert.NotEmpty(t, payment.ReceiptID)
			assert.Equal(t, int64(1), f.auditCount(t, model.ActionRequestPayment))
		})
	}
}

func TestRequestPaymentTwiceIsConflict(t *testing.T) {
	f := newFixture(t)
	f.rate(t, "L1", 500)
	trainer, app := appliedTrainer(t, f, 2)
	svc := f.paymentService()

	payment, err := svc.RequestPayment(f.ctx, trainer, app.ID)
	require.NoError(t, err)

	_, err = svc.RequestPayment(f.ctx, trainer, app.ID)
	assertKind(t, apperr.KindConflict, err)

	_, err = svc.Reject(f.ctx, f.actor(t, model.RoleStaff), payment.ID)
	require.NoError(t, err)

	_, err = svc.RequestPayment(f.ctx, trainer, app.ID)
	assertKind(t, apperr.KindConflict, err)
}

func TestRequestPaymentWithoutLevelIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.rate(t, "L1", 500)
	trainer := f.actor(t, model.RoleTrainer)
	tr := f.training(t, trainer, day("2024-05-10"), 1)
	app, err := f.applicationService().Apply(f.ctx, trainer, tr.ID)
	require.NoError(t, err)

	_, err = f.paymentService().RequestPayment(f.ctx, trainer, app.ID)
	assertKind(t, apperr.KindNotFound, err)
	assert.Equal(t, "no trainer level assigned", err.Error())
	assert.Zero(t, f.auditCount(t, model.ActionRequestPayment))
}

func TestRequestPaymentWithoutRateForLevelIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.rate(t, "L1", 500)
	trainer := f.actor(t, model.RoleTrainer)
	f.level(t, trainer, "L9")
	tr := f.training(t, trainer, day("2024-05-10"), 1)
	app, err := f.applicationService().Apply(f.ctx, trainer, tr.ID)
	require.NoError(t, err)

	_, err = f.paymentService().RequestPayment(f.ctx, trainer, app.ID)
	assertKind(t, apperr.KindNotFound, err)
	assert.Equal(t, "no payment rate for level L9", err.Error())
	assert.Zero(t, f.auditCount(t, model.ActionRequestPayment))
}

func TestRequestPaymentForClosedApplicationIsConflict(t *testing.T) {
	cases := []struct {
		name  string
		close func(t *testing.T, f *fixture, trainer rbac.Actor, id uuid.UUID) error
	}{
		{"rejected", func(t *testing.T, f *fixture, _ rbac.Actor, id uuid.UUID) error {
			_, err := f.applicationService().Reject(f.ctx, f.actor(t, model.RoleStaff), id)
			return err
		}},
		{"withdrawn", func(_ *testing.T, f *fixture, trainer rbac.Actor, id uuid.UUID) error {
			_, err := f.applicationService().Withdraw(f.ctx, trainer, id)
			return err
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.rate(t, "L1", 500)
			trainer, app := appliedTrainer(t, f, 1)
			require.NoError(t, tc.close(t, f, trainer, app.ID))

			_, err := f.paymentService().RequestPayment(f.ctx, trainer, app.ID)
			assertKind(t, apperr.KindConflict, err)
			assert.Zero(t, f.auditCount(t, model.ActionRequestPayment))
		})
	}
}

func TestRequestPaymentForSomeoneElsesApplication(t *testing.T) {
	f := newFixture(t)
	f.rate(t, "L1", 500)
	_, app := appliedTrainer(t, f, 1)
	other := f.actor(t, model.RoleTrainer)
	f.level(t, other, "L1")

	_, err := f.paymentService().RequestPayment(f.ctx, other, app.ID)
	assertKind(t, apperr.KindForbidden, err)

	_, err = f.paymentService().RequestPayment(f.ctx, other, uuid.New())
	assertKind(t, apperr.KindNotFound, err)

	_, err = f.paymentService().RequestPayment(f.ctx, f.actor(t, model.RoleStaff), app.ID)
	assertKind(t, apperr.KindForbidden, err)
}

func TestPaymentApprovalFlow(t *testing.T) {
	f := newFixture(t)
	f.rate(t, "L1", 500)
	trainer, app := appliedTrainer(t, f, 3)
	svc := f.paymentService()
	staff := f.actor(t, model.RoleStaff)

	payment, err := svc.RequestPayment(f.ctx, trainer, app.ID)
	require.NoError(t, err)

	_, err = svc.Approve(f.ctx, f.actor(t, model.RoleTrainee), payment.ID)
	assertKind(t, apperr.KindForbidden, err)
	_, err = svc.Approve(f.ctx, trainer, payment.ID)
	assertKind(t, apperr.KindForbidden, err)

	_, err = svc.Complete(f.ctx, staff, payment.ID)
	assertKind(t, apperr.KindConflict, err)

	payment, err = svc.Approve(f.ctx, staff, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentApproved, payment.Status)
	require.NotNil(t, payment.ApprovedBy)
	assert.Equal(t, staff.ID, *payment.ApprovedBy)
	assert.NotNil(t, payment.ApprovedAt)

	_, err = svc.Reject(f.ctx, staff, payment.ID)
	assertKind(t, apperr.KindConflict, err)

	payment, err = svc.Complete(f.ctx, staff, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, payment.Status)

	assert.Contains(t, f.events.types(), "PAYMENT_APPROVED")
	assert.Contains(t, f.events.types(), "PAYMENT_COMPLETED")
}

func TestPaymentVisibilityAndExport(t *testing.T) {
	f := newFixture(t)
	f.rate(t, "L1", 500)
	svc := f.paymentService()
	a, appA := appliedTrainer(t, f, 1)
	b, appB := appliedTrainer(t, f, 2)
	staff := f.actor(t, model.RoleStaff)

	payA, err := svc.RequestPayment(f.ctx, a, appA.ID)
	require.NoError(t, err)
	_, err = svc.RequestPayment(f.ctx, b, appB.ID)
	require.NoError(t, err)

	page, err := svc.List(f.ctx, a, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, payA.ID, page.Items[0].ID)

	page, err = svc.List(f.ctx, staff, model.PaymentPending, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	_, err = svc.Get(f.ctx, b, payA.ID)
	assertKind(t, apperr.KindForbidden, err)

	var buf bytes.Buffer
	assertKind(t, apperr.KindForbidden, svc.Export(f.ctx, a, "", &buf))

	require.NoError(t, svc.Export(f.ctx, staff, "", &buf))
	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Payments")
	require.NoError(t, err)
	assert.Len(t, rows, 4) // header, two payments, total
}
