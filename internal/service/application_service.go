package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trainingdesk/internal/apperr"
	"trainingdesk/internal/model"
	"trainingdesk/internal/rbac"
	"trainingdesk/internal/repository"
	"trainingdesk/internal/workflow"

	"github.com/google/uuid"
)

type ApplicationListFilter struct {
	TrainingID *uuid.UUID
	Status     model.ApplicationStatus
}

// ApplicationService runs the training application workflow.
type ApplicationService interface {
	Apply(ctx context.Context, actor rbac.Actor, trainingID uuid.UUID) (*model.TrainingApplication, error)
	Approve(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.TrainingApplication, error)
	Reject(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.TrainingApplication, error)
	Complete(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.TrainingApplication, error)
	Withdraw(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.TrainingApplication, error)
	Get(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.TrainingApplication, error)
	List(ctx context.Context, actor rbac.Actor, filter ApplicationListFilter, page, limit int) (Page[model.TrainingApplication], error)
}

type applicationService struct {
	repo         repository.ApplicationRepository
	trainingRepo repository.TrainingRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	notifier     Notifier
}

func NewApplicationService(
	repo repository.ApplicationRepository,
	trainingRepo repository.TrainingRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) ApplicationService {
	return &applicationService{
		repo:         repo,
		trainingRepo: trainingRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		notifier:     notifierOrNop(notifier),
	}
}

func (s *applicationService) Apply(ctx context.Context, actor rbac.Actor, trainingID uuid.UUID) (*model.TrainingApplication, error) {
	if err := rbac.Authorize(actor, rbac.ApplicationApply); err != nil {
		return nil, err
	}

	app := &model.TrainingApplication{
		TrainingID: trainingID,
		TrainerID:  actor.ID,
		Status:     workflow.Applications.Initial,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		training, err := s.trainingRepo.GetByID(txCtx, trainingID)
		if err != nil {
			return apperr.FromDB(err, "training")
		}

		exists, err := s.repo.ExistsFor(txCtx, actor.ID, trainingID)
		if err != nil {
			return fmt.Errorf("failed to check existing application: %w", err)
		}
		if exists {
			return apperr.Conflict("you have already applied for training %s", training.Code)
		}

		if err := s.repo.Create(txCtx, app); err != nil {
			return apperr.FromDB(err, "application")
		}

		entry := newAudit(&actor, model.ActionApplyTraining, app.ID.String(), training.Code, map[string]string{
			"training_id": training.ID.String(),
		})
		if err := s.auditRepo.Log(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(event("APPLICATION_SUBMITTED", "application", app.ID, string(app.Status), &actor, actor.ID))
	return s.repo.GetByID(ctx, app.ID)
}

func (s *applicationService) Approve(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.TrainingApplication, error) {
	return s.fire(ctx, actor, id, workflow.EventApprove, model.ActionApproveApplication)
}

func (s *applicationService) Reject(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.TrainingApplication, error) {
	return s.fire(ctx, actor, id, workflow.EventReject, model.ActionRejectApplication)
}

func (s *applicationService) Complete(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.TrainingApplication, error) {
	return s.fire(ctx, actor, id, workflow.EventComplete, model.ActionCompleteApplication)
}

// Withdraw is only open to the trainer who applied.
func (s *applicationService) Withdraw(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.TrainingApplication, error) {
	return s.fire(ctx, actor, id, workflow.EventWithdraw, model.ActionWithdrawApplication)
}

func (s *applicationService) fire(ctx context.Context, actor rbac.Actor, id uuid.UUID, evt workflow.Event, action string) (*model.TrainingApplication, error) {
	if err := workflow.Applications.Authorize(actor, evt); err != nil {
		return nil, err
	}

	var to model.ApplicationStatus
	var owner uuid.UUID
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.repo.GetForUpdate(txCtx, id)
		if err != nil {
			return apperr.FromDB(err, "application")
		}
		owner = app.TrainerID
		if evt == workflow.EventWithdraw && app.TrainerID != actor.ID {
			return apperr.Forbidden("you can only withdraw your own applications")
		}

		from := app.Status
		to, err = workflow.Applications.Next(from, evt)
		if err != nil {
			return err
		}

		app.Status = to
		if evt != workflow.EventWithdraw {
			now := time.Now()
			app.ReviewedBy = &actor.ID
			app.ReviewedAt = &now
		}
		if err := s.repo.Update(txCtx, app); err != nil {
			return apperr.FromDB(err, "application")
		}

		name := ""
		if app.Training != nil {
			name = app.Training.Code
		}
		entry := newAudit(&actor, action, app.ID.String(), name, map[string]string{
			"from": string(from),
			"to":   string(to),
		})
		if err := s.auditRepo.Log(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(event("APPLICATION_"+strings.ToUpper(string(to)), "application", id, string(to), &actor, owner))
	return s.repo.GetByID(ctx, id)
}

func (s *applicationService) Get(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.TrainingApplication, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "application")
	}
	if err := rbac.CanView(actor, app.TrainerID); err != nil {
		return nil, err
	}
	return app, nil
}

// List returns every application to staff and admin, and only the caller's own to anyone else.
func (s *applicationService) List(ctx context.Context, actor rbac.Actor, filter ApplicationListFilter, page, limit int) (Page[model.TrainingApplication], error) {
	page, limit = normalizePage(page, limit)
	repoFilter := repository.ApplicationFilter{TrainingID: filter.TrainingID, Status: filter.Status}
	if !rbac.SeesAll(actor) {
		repoFilter.TrainerID = &actor.ID
	}
	apps, total, err := s.repo.List(ctx, repoFilter, page, limit)
	if err != nil {
		return Page[model.TrainingApplication]{}, fmt.Errorf("failed to list applications: %w", err)
	}
	return newPage(apps, total, page, limit), nil
}
