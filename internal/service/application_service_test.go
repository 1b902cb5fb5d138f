package service

import (
	"testing"

	"trainingdesk/internal/apperr"
	"trainingdesk/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCreatesPendingApplication(t *testing.T) {
	f := newFixture(t)
	svc := f.applicationService()
	trainer := f.actor(t, model.RoleTrainer)
	tr := f.training(t, trainer, day("2024-03-01"), 0)

	app, err := svc.Apply(f.ctx, trainer, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationPending, app.Status)
	assert.Equal(t, trainer.ID, app.TrainerID)
	require.NotNil(t, app.Training)
	assert.Equal(t, tr.Code, app.Training.Code)

	assert.Equal(t, int64(1), f.auditCount(t, model.ActionApplyTraining))
	assert.Equal(t, []string{"APPLICATION_SUBMITTED"}, f.events.types())
}

func TestApplyTwiceIsConflictWhateverTheStatus(t *testing.T) {
	f := newFixture(t)
	svc := f.applicationService()
	trainer := f.actor(t, model.RoleTrainer)
	staff := f.actor(t, model.RoleStaff)
	tr := f.training(t, trainer, day("2024-03-01"), 2)

	app, err := svc.Apply(f.ctx, trainer, tr.ID)
	require.NoError(t, err)

	_, err = svc.Apply(f.ctx, trainer, tr.ID)
	assertKind(t, apperr.KindConflict, err)

	_, err = svc.Reject(f.ctx, staff, app.ID)
	require.NoError(t, err)

	_, err = svc.Apply(f.ctx, trainer, tr.ID)
	assertKind(t, apperr.KindConflict, err)
}

func TestApplyRequiresTrainerAndExistingTraining(t *testing.T) {
	f := newFixture(t)
	svc := f.applicationService()
	trainer := f.actor(t, model.RoleTrainer)
	tr := f.training(t, trainer, day("2024-03-01"), 1)

	_, err := svc.Apply(f.ctx, f.actor(t, model.RoleTrainee), tr.ID)
	assertKind(t, apperr.KindForbidden, err)

	_, err = svc.Apply(f.ctx, trainer, uuid.New())
	assertKind(t, apperr.KindNotFound, err)
}

func TestWithdrawApprovedThenReviewIsConflict(t *testing.T) {
	f := newFixture(t)
	svc := f.applicationService()
	trainer := f.actor(t, model.RoleTrainer)
	staff := f.actor(t, model.RoleStaff)
	tr := f.training(t, trainer, day("2024-03-01"), 1)

	app, err := svc.Apply(f.ctx, trainer, tr.ID)
	require.NoError(t, err)

	app, err = svc.Approve(f.ctx, staff, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationApproved, app.Status)
	require.NotNil(t, app.ReviewedBy)
	assert.Equal(t, staff.ID, *app.ReviewedBy)

	app, err = svc.Withdraw(f.ctx, trainer, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationWithdrawn, app.Status)

	_, err = svc.Approve(f.ctx, staff, app.ID)
	assertKind(t, apperr.KindConflict, err)
	_, err = svc.Reject(f.ctx, staff, app.ID)
	assertKind(t, apperr.KindConflict, err)

	stored, err := f.applications.GetByID(f.ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationWithdrawn, stored.Status)
}

func TestWithdrawIsOwnerOnly(t *testing.T) {
	f := newFixture(t)
	svc := f.applicationService()
	owner := f.actor(t, model.RoleTrainer)
	other := f.actor(t, model.RoleTrainer)
	tr := f.training(t, owner, day("2024-03-01"), 1)

	app, err := svc.Apply(f.ctx, owner, tr.ID)
	require.NoError(t, err)

	_, err = svc.Withdraw(f.ctx, other, app.ID)
	assertKind(t, apperr.KindForbidden, err)

	_, err = svc.Withdraw(f.ctx, f.actor(t, model.RoleStaff), app.ID)
	assertKind(t, apperr.KindForbidden, err)
}

func TestCompleteFromPending(t *testing.T) {
	f := newFixture(t)
	svc := f.applicationService()
	trainer := f.actor(t, model.RoleTrainer)
	admin := f.actor(t, model.RoleAdmin)
	tr := f.training(t, trainer, day("2024-03-01"), 1)

	app, err := svc.Apply(f.ctx, trainer, tr.ID)
	require.NoError(t, err)

	_, err = svc.Complete(f.ctx, trainer, app.ID)
	assertKind(t, apperr.KindForbidden, err)

	app, err = svc.Complete(f.ctx, admin, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationCompleted, app.Status)

	_, err = svc.Withdraw(f.ctx, trainer, app.ID)
	assertKind(t, apperr.KindConflict, err)
}

func TestApplicationVisibility(t *testing.T) {
	f := newFixture(t)
	svc := f.applicationService()
	a := f.actor(t, model.RoleTrainer)
	b := f.actor(t, model.RoleTrainer)
	staff := f.actor(t, model.RoleStaff)

	appA, err := svc.Apply(f.ctx, a, f.training(t, a, day("2024-03-01"), 1).ID)
	require.NoError(t, err)
	_, err = svc.Apply(f.ctx, b, f.training(t, b, day("2024-03-01"), 1).ID)
	require.NoError(t, err)

	page, err := svc.List(f.ctx, a, ApplicationListFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, appA.ID, page.Items[0].ID)

	page, err = svc.List(f.ctx, staff, ApplicationListFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = svc.List(f.ctx, staff, ApplicationListFilter{Status: model.ApplicationApproved}, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.NotNil(t, page.Items)

	_, err = svc.Get(f.ctx, b, appA.ID)
	assertKind(t, apperr.KindForbidden, err)
	_, err = svc.Get(f.ctx, staff, appA.ID)
	assert.NoError(t, err)
}
