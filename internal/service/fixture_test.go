package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"trainingdesk/internal/apperr"
	"trainingdesk/internal/auth"
	"trainingdesk/internal/database/dbtest"
	"trainingdesk/internal/model"
	"trainingdesk/internal/rbac"
	"trainingdesk/internal/repository"
	ws "trainingdesk/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recorder struct {
	mu     sync.Mutex
	events []ws.Event
}

func (r *recorder) Publish(evt ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// fixture wires every repository over a fresh database.
type fixture struct {
	ctx context.Context
	db  *gorm.DB

	tx           repository.TransactionManager
	users        repository.UserRepository
	audit        repository.AuditRepository
	types        repository.TrainingTypeRepository
	trainings    repository.TrainingRepository
	applications repository.ApplicationRepository
	rates        repository.RateRepository
	payments     repository.PaymentRepository
	contracts    repository.ContractRepository
	warranties   repository.WarrantyRepository
	certificates repository.CertificateRepository
	events       *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	return &fixture{
		ctx:          context.Background(),
		db:           db,
		tx:           repository.NewTransactionManager(db),
		users:        repository.NewUserRepository(db),
		audit:        repository.NewAuditRepository(db),
		types:        repository.NewTrainingTypeRepository(db),
		trainings:    repository.NewTrainingRepository(db),
		applications: repository.NewApplicationRepository(db),
		rates:        repository.NewRateRepository(db),
		payments:     repository.NewPaymentRepository(db),
		contracts:    repository.NewContractRepository(db),
		warranties:   repository.NewWarrantyRepository(db),
		certificates: repository.NewCertificateRepository(db),
		events:       &recorder{},
	}
}

func (f *fixture) userService() UserService {
	return NewUserService(f.users, f.audit, f.tx, auth.NewTokens("test-secret", time.Hour))
}

func (f *fixture) applicationService() ApplicationService {
	return NewApplicationService(f.applications, f.trainings, f.audit, f.tx, f.events)
}

func (f *fixture) paymentService() PaymentService {
	return NewPaymentService(f.payments, f.applications, f.rates, f.audit, f.tx, f.events)
}

func (f *fixture) rateService() RateService {
	return NewRateService(f.rates, f.users, f.audit, f.tx)
}

func (f *fixture) contractService() ContractService {
	return NewContractService(f.contracts, f.types, f.audit, f.tx, f.events)
}

func (f *fixture) warrantyService() WarrantyService {
	return NewWarrantyService(f.warranties, f.users, f.audit, f.tx, f.events)
}

// actor stores a user with role and returns it as the caller of an operation.
func (f *fixture) actor(t *testing.T, role model.Role) rbac.Actor {
	t.Helper()
	suffix := uuid.NewString()[:8]
	user := &model.User{
		Username:  string(role) + "-" + suffix,
		Email:     string(role) + "-" + suffix + "@example.com",
		FirstName: "Test",
		LastName:  string(role),
		Sex:       model.SexFemale,
		Role:      role,
		Password:  "x",
		IsActive:  true,
	}
	require.NoError(t, f.users.Create(f.ctx, user))
	return rbac.Actor{ID: user.ID, Role: role}
}

func (f *fixture) trainingType(t *testing.T) *model.TrainingType {
	t.Helper()
	tt := &model.TrainingType{Name: "Safety " + uuid.NewString()[:8]}
	require.NoError(t, f.types.Create(f.ctx, tt))
	return tt
}

// training schedules a training given by trainer from start for days calendar days.
func (f *fixture) training(t *testing.T, trainer rbac.Actor, start time.Time, days int) *model.Training {
	t.Helper()
	tr := &model.Training{
		Code:           "TR-" + uuid.NewString()[:8],
		TrainingTypeID: f.trainingType(t).ID,
		GivenByID:      trainer.ID,
		GivenDate:      start,
		EndDate:        start.AddDate(0, 0, days),
		Location:       "Hall A",
	}
	require.NoError(t, f.trainings.Create(f.ctx, tr))
	return tr
}

func (f *fixture) rate(t *testing.T, level string, perDay int64) {
	t.Helper()
	require.NoError(t, f.rates.CreateRate(f.ctx, &model.PaymentRate{Level: level, PerDay: decimal.NewFromInt(perDay)}))
}

func (f *fixture) level(t *testing.T, trainer rbac.Actor, level string) {
	t.Helper()
	require.NoError(t, f.rates.AssignLevel(f.ctx, &model.TrainerLevel{TrainerID: trainer.ID, Level: level}))
}

func (f *fixture) auditCount(t *testing.T, action string) int64 {
	t.Helper()
	_, total, err := f.audit.List(f.ctx, repository.AuditFilter{Action: action}, 1, 100)
	require.NoError(t, err)
	return total
}

func day(s string) time.Time {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func assertKind(t *testing.T, want apperr.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, apperr.KindOf(err), err.Error())
}
