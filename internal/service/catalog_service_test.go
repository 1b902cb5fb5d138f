package service

import (
	"testing"
	"time"

	"trainingdesk/internal/apperr"
	"trainingdesk/internal/model"
	"trainingdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainingCRUD(t *testing.T) {
	f := newFixture(t)
	svc := NewTrainingService(f.types, f.trainings, f.users)
	staff := f.actor(t, model.RoleStaff)
	rworker := f.actor(t, model.RoleRworker)
	trainer := f.actor(t, model.RoleTrainer)

	tt, err := svc.CreateType(f.ctx, staff, TrainingTypeRequest{Name: "First aid", DesignedFor: "everyone"})
	require.NoError(t, err)
	_, err = svc.CreateType(f.ctx, staff, TrainingTypeRequest{Name: "First aid"})
	assertKind(t, apperr.KindConflict, err)

	req := TrainingRequest{
		TrainingID:     "TR-001",
		TrainingTypeID: tt.ID,
		GivenByID:      trainer.ID,
		GivenDate:      "2024-04-01",
		EndDate:        "2024-04-03",
		Location:       "Room 2",
	}
	training, err := svc.Create(f.ctx, rworker, req)
	require.NoError(t, err)
	assert.Equal(t, "TR-001", training.Code)
	require.NotNil(t, training.GivenBy)
	assert.Equal(t, trainer.ID, training.GivenBy.ID)

	_, err = svc.Create(f.ctx, rworker, req)
	assertKind(t, apperr.KindConflict, err)

	bad := req
	bad.TrainingID, bad.EndDate = "TR-002", "2024-03-30"
	_, err = svc.Create(f.ctx, staff, bad)
	assertKind(t, apperr.KindValidation, err)

	bad = req
	bad.TrainingID, bad.GivenByID = "TR-003", staff.ID
	_, err = svc.Create(f.ctx, staff, bad)
	assertKind(t, apperr.KindValidation, err)

	_, err = svc.Create(f.ctx, trainer, req)
	assertKind(t, apperr.KindForbidden, err)

	page, err := svc.List(f.ctx, f.actor(t, model.RoleTrainer), 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	page, err = svc.List(f.ctx, trainer, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	req.Location = "Room 3"
	training, err = svc.Update(f.ctx, staff, training.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Room 3", training.Location)

	require.NoError(t, svc.Delete(f.ctx, staff, training.ID))
	assertKind(t, apperr.KindNotFound, svc.Delete(f.ctx, staff, training.ID))
}

func TestDepartmentHeadMustBeStaff(t *testing.T) {
	f := newFixture(t)
	svc := NewDepartmentService(repository.NewDepartmentRepository(f.db), f.users)
	admin := f.actor(t, model.RoleAdmin)
	head := f.actor(t, model.RoleStaff)
	trainer := f.actor(t, model.RoleTrainer)

	_, err := svc.Create(f.ctx, admin, DepartmentRequest{Name: "HR", HeadID: &trainer.ID})
	assertKind(t, apperr.KindValidation, err)

	dept, err := svc.Create(f.ctx, admin, DepartmentRequest{Name: "HR", HeadID: &head.ID})
	require.NoError(t, err)
	require.NotNil(t, dept.Head)
	assert.Equal(t, head.ID, dept.Head.ID)

	_, err = svc.Create(f.ctx, trainer, DepartmentRequest{Name: "Ops"})
	assertKind(t, apperr.KindForbidden, err)

	dept, err = svc.Update(f.ctx, admin, dept.ID, DepartmentRequest{Name: "People"})
	require.NoError(t, err)
	assert.Equal(t, "People", dept.Name)
	assert.Nil(t, dept.HeadID)
}

func TestCertificates(t *testing.T) {
	f := newFixture(t)
	svc := NewCertificateService(f.certificates, f.users, f.trainings, f.audit, f.tx)
	staff := f.actor(t, model.RoleStaff)
	trainee := f.actor(t, model.RoleTrainee)
	tr := f.training(t, f.actor(t, model.RoleTrainer), day("2024-02-01"), 1)

	req := CertificateRequest{CertifiedID: trainee.ID, TrainingID: tr.ID, GivenDate: "2024-02-02"}
	_, err := svc.Issue(f.ctx, trainee, req)
	assertKind(t, apperr.KindForbidden, err)

	cert, err := svc.Issue(f.ctx, staff, req)
	require.NoError(t, err)
	assert.NotEmpty(t, cert.CertificateID)
	require.NotNil(t, cert.Training)
	assert.Equal(t, tr.Code, cert.Training.Code)

	_, err = svc.Issue(f.ctx, staff, CertificateRequest{CertifiedID: trainee.ID, TrainingID: uuid.New(), GivenDate: "2024-02-02"})
	assertKind(t, apperr.KindNotFound, err)

	got, err := svc.Get(f.ctx, trainee, cert.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Training)
	assert.Equal(t, tr.Code, got.Training.Code)

	page, err := svc.List(f.ctx, trainee, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].Training)
	assert.Equal(t, tr.Code, page.Items[0].Training.Code)

	page, err = svc.List(f.ctx, f.actor(t, model.RoleTrainee), 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	_, err = svc.Get(f.ctx, f.actor(t, model.RoleRworker), cert.ID)
	assertKind(t, apperr.KindForbidden, err)
	assert.Equal(t, int64(1), f.auditCount(t, model.ActionIssueCertificate))
}

func TestInnovations(t *testing.T) {
	f := newFixture(t)
	svc := NewInnovationService(repository.NewInnovatorRepository(f.db), repository.NewInnovationRepository(f.db))
	trainee := f.actor(t, model.RoleTrainee)

	innovator, err := svc.CreateInnovator(f.ctx, trainee, InnovatorRequest{
		Email: "grace@example.com", FirstName: "Grace", LastName: "Hopper", Sex: "female",
	})
	require.NoError(t, err)

	_, err = svc.CreateInnovation(f.ctx, trainee, InnovationRequest{InnovatorID: uuid.New(), Title: "x", Description: "y"})
	assertKind(t, apperr.KindNotFound, err)

	innovation, err := svc.CreateInnovation(f.ctx, trainee, InnovationRequest{
		InnovatorID: innovator.ID, Title: "Compiler", Description: "Turns words into code",
	})
	require.NoError(t, err)
	require.NotNil(t, innovation.Innovator)
	assert.Equal(t, "Grace", innovation.Innovator.FirstName)

	page, err := svc.ListInnovations(f.ctx, trainee, &innovator.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	require.NoError(t, svc.DeleteInnovation(f.ctx, trainee, innovation.ID))
	_, err = svc.GetInnovation(f.ctx, trainee, innovation.ID)
	assertKind(t, apperr.KindNotFound, err)
}

func TestAuditLogsAreAdminOnly(t *testing.T) {
	f := newFixture(t)
	svc := NewAuditService(f.audit)
	_, err := f.userService().Register(f.ctx, nil, registerRequest("ada", ""))
	require.NoError(t, err)

	_, err = svc.GetAuditLogs(f.ctx, f.actor(t, model.RoleStaff), repository.AuditFilter{}, 1, 10)
	assertKind(t, apperr.KindForbidden, err)

	page, err := svc.GetAuditLogs(f.ctx, f.actor(t, model.RoleAdmin), repository.AuditFilter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "System", page.Items[0].Username)
	assert.Equal(t, model.ActionRegisterUser, page.Items[0].Action)
}

func TestStatistics(t *testing.T) {
	f := newFixture(t)
	f.rate(t, "L1", 500)
	svc := NewStatisticsService(repository.NewStatisticsRepository(f.db))
	staff := f.actor(t, model.RoleStaff)
	payments := f.paymentService()

	trainer, app := appliedTrainer(t, f, 4)
	payment, err := payments.RequestPayment(f.ctx, trainer, app.ID)
	require.NoError(t, err)
	_, err = payments.Approve(f.ctx, staff, payment.ID)
	require.NoError(t, err)

	_, err = svc.GetStatistics(f.ctx, trainer, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	assertKind(t, apperr.KindForbidden, err)

	stats, err := svc.GetStatistics(f.ctx, staff, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2000).Equal(stats.TotalOutstanding), stats.TotalOutstanding.String())
	assert.True(t, stats.TotalPaid.IsZero())
	require.Len(t, stats.TopTrainers, 1)
	assert.Equal(t, trainer.ID.String(), stats.TopTrainers[0].TrainerID)
	require.Len(t, stats.Applications, 1)
	assert.Equal(t, int64(1), stats.Applications[0].Count)
}
