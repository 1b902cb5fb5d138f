package service

import (
	"testing"

	"trainingdesk/internal/apperr"
	"trainingdesk/internal/model"
	"trainingdesk/internal/rbac"
	"trainingdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWarranty(t *testing.T, f *fixture, staff rbac.Actor, expiry string) *model.WarrantyMoney {
	t.Helper()
	w, err := f.warrantyService().Create(f.ctx, staff, WarrantyRequest{
		Guarantee:    "laptop deposit",
		AllowedForID: f.actor(t, model.RoleTrainee).ID,
		Amount:       decimal.NewFromInt(150),
		ExpiryDate:   expiry,
	})
	require.NoError(t, err)
	return w
}

func TestCreateWarranty(t *testing.T) {
	f := newFixture(t)
	svc := f.warrantyService()
	staff := f.actor(t, model.RoleStaff)

	w := newWarranty(t, f, staff, "2025-01-31")
	assert.Equal(t, model.WarrantyActive, w.Status)
	require.NotNil(t, w.ExpiryDate)
	assert.Equal(t, "2025-01-31", w.ExpiryDate.Format(dateLayout))

	_, err := svc.Create(f.ctx, staff, WarrantyRequest{
		Guarantee:    "deposit",
		AllowedForID: f.actor(t, model.RoleTrainer).ID,
		Amount:       decimal.NewFromInt(10),
	})
	assertKind(t, apperr.KindValidation, err)

	_, err = svc.Create(f.ctx, f.actor(t, model.RoleTrainer), WarrantyRequest{})
	assertKind(t, apperr.KindForbidden, err)

	_, err = svc.Get(f.ctx, f.actor(t, model.RoleTrainee), w.ID)
	assertKind(t, apperr.KindForbidden, err)
}

func TestBulkExpireIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	svc := f.warrantyService()
	staff := f.actor(t, model.RoleStaff)
	a := newWarranty(t, f, staff, "")
	b := newWarranty(t, f, staff, "")

	_, err := svc.MarkClaimed(f.ctx, staff, []uuid.UUID{b.ID})
	require.NoError(t, err)

	_, err = svc.MarkExpired(f.ctx, staff, []uuid.UUID{a.ID, b.ID})
	assertKind(t, apperr.KindConflict, err)

	stored, err := f.warranties.GetByID(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.WarrantyActive, stored.Status)

	_, err = svc.MarkExpired(f.ctx, staff, []uuid.UUID{a.ID, uuid.New()})
	assertKind(t, apperr.KindNotFound, err)

	_, err = svc.MarkExpired(f.ctx, staff, nil)
	assertKind(t, apperr.KindValidation, err)

	_, err = svc.MarkExpired(f.ctx, f.actor(t, model.RoleTrainer), []uuid.UUID{a.ID})
	assertKind(t, apperr.KindForbidden, err)

	updated, err := svc.MarkExpired(f.ctx, staff, []uuid.UUID{a.ID, a.ID})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, model.WarrantyExpired, updated[0].Status)
	assert.Equal(t, int64(1), f.auditCount(t, model.ActionExpireWarranty))
}

func TestUpdateWarrantyStatusFollowsWorkflow(t *testing.T) {
	f := newFixture(t)
	svc := f.warrantyService()
	staff := f.actor(t, model.RoleStaff)
	w := newWarranty(t, f, staff, "")

	pending := string(model.WarrantyPending)
	amount := decimal.NewFromInt(200)
	w, err := svc.Update(f.ctx, staff, w.ID, UpdateWarrantyRequest{Status: &pending, Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, model.WarrantyPending, w.Status)
	assert.True(t, amount.Equal(w.Amount))

	claimed := string(model.WarrantyClaimed)
	_, err = svc.Update(f.ctx, staff, w.ID, UpdateWarrantyRequest{Status: &claimed})
	require.NoError(t, err)

	active := string(model.WarrantyActive)
	_, err = svc.Update(f.ctx, staff, w.ID, UpdateWarrantyRequest{Status: &active})
	assertKind(t, apperr.KindConflict, err)

	bogus := "lost"
	_, err = svc.Update(f.ctx, staff, w.ID, UpdateWarrantyRequest{Status: &bogus})
	assertKind(t, apperr.KindValidation, err)

	_, err = svc.Update(f.ctx, staff, uuid.New(), UpdateWarrantyRequest{})
	assertKind(t, apperr.KindNotFound, err)
}

func TestSweepExpiresPastDueWarranties(t *testing.T) {
	f := newFixture(t)
	svc := f.warrantyService()
	staff := f.actor(t, model.RoleStaff)

	overdue := newWarranty(t, f, staff, "2024-06-01")
	dueToday := newWarranty(t, f, staff, "2024-06-15")
	open := newWarranty(t, f, staff, "")
	claimed := newWarranty(t, f, staff, "2024-05-01")
	_, err := svc.MarkClaimed(f.ctx, staff, []uuid.UUID{claimed.ID})
	require.NoError(t, err)

	n, err := svc.SweepExpired(f.ctx, day("2024-06-15"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	want := map[uuid.UUID]model.WarrantyStatus{
		overdue.ID:  model.WarrantyExpired,
		dueToday.ID: model.WarrantyActive,
		open.ID:     model.WarrantyActive,
		claimed.ID:  model.WarrantyClaimed,
	}
	for id, status := range want {
		stored, err := f.warranties.GetByID(f.ctx, id)
		require.NoError(t, err)
		assert.Equal(t, status, stored.Status, id.String())
	}

	n, err = svc.SweepExpired(f.ctx, day("2024-06-15"))
	require.NoError(t, err)
	assert.Zero(t, n)

	logs, _, err := f.audit.List(f.ctx, repository.AuditFilter{Action: model.ActionExpireWarranty}, 1, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].UserID)
}
