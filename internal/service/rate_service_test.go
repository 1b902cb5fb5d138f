package service

import (
	"testing"

	"trainingdesk/internal/apperr"
	"trainingdesk/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateManagement(t *testing.T) {
	f := newFixture(t)
	svc := f.rateService()
	staff := f.actor(t, model.RoleStaff)
	trainer := f.actor(t, model.RoleTrainer)

	_, err := svc.CreateRate(f.ctx, trainer, RateRequest{Level: "L1", PerDay: decimal.NewFromInt(500)})
	assertKind(t, apperr.KindForbidden, err)

	_, err = svc.CreateRate(f.ctx, staff, RateRequest{Level: "L1", PerDay: decimal.NewFromInt(-1)})
	assertKind(t, apperr.KindValidation, err)

	_, err = svc.CreateRate(f.ctx, staff, RateRequest{Level: "L1", PerDay: decimal.NewFromInt(500)})
	require.NoError(t, err)

	_, err = svc.CreateRate(f.ctx, staff, RateRequest{Level: "L1", PerDay: decimal.NewFromInt(600)})
	assertKind(t, apperr.KindConflict, err)

	rate, err := svc.UpdateRate(f.ctx, staff, "L1", decimal.RequireFromString("550.50"))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("550.5").Equal(rate.PerDay))

	_, err = svc.UpdateRate(f.ctx, staff, "L9", decimal.NewFromInt(1))
	assertKind(t, apperr.KindNotFound, err)

	rates, err := svc.ListRates(f.ctx, trainer)
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.True(t, decimal.RequireFromString("550.5").Equal(rates[0].PerDay))

	assert.Equal(t, int64(2), f.auditCount(t, model.ActionSetPaymentRate))
}

func TestAssignLevel(t *testing.T) {
	f := newFixture(t)
	svc := f.rateService()
	staff := f.actor(t, model.RoleStaff)
	trainer := f.actor(t, model.RoleTrainer)
	f.rate(t, "L1", 500)
	f.rate(t, "L2", 800)

	_, err := svc.AssignLevel(f.ctx, staff, LevelRequest{TrainerID: f.actor(t, model.RoleTrainee).ID, Level: "L1"})
	assertKind(t, apperr.KindValidation, err)

	_, err = svc.AssignLevel(f.ctx, staff, LevelRequest{TrainerID: trainer.ID, Level: "L7"})
	assertKind(t, apperr.KindNotFound, err)

	_, err = svc.AssignLevel(f.ctx, staff, LevelRequest{TrainerID: uuid.New(), Level: "L1"})
	assertKind(t, apperr.KindNotFound, err)

	_, err = svc.LevelFor(f.ctx, trainer, trainer.ID)
	assertKind(t, apperr.KindNotFound, err)

	level, err := svc.AssignLevel(f.ctx, staff, LevelRequest{TrainerID: trainer.ID, Level: "L1"})
	require.NoError(t, err)
	assert.Equal(t, "L1", level.Level)

	_, err = svc.AssignLevel(f.ctx, staff, LevelRequest{TrainerID: trainer.ID, Level: "L2"})
	assertKind(t, apperr.KindConflict, err)

	level, err = svc.UpdateLevel(f.ctx, staff, LevelRequest{TrainerID: trainer.ID, Level: "L2"})
	require.NoError(t, err)
	assert.Equal(t, "L2", level.Level)
	rate, err := f.rates.RateFor(f.ctx, level.Level)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(800).Equal(rate.PerDay))

	_, err = svc.LevelFor(f.ctx, f.actor(t, model.RoleTrainer), trainer.ID)
	assertKind(t, apperr.KindForbidden, err)

	page, err := svc.ListLevels(f.ctx, staff, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}
