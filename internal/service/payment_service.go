package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"trainingdesk/internal/apperr"
	"trainingdesk/internal/billing"
	"trainingdesk/internal/model"
	"trainingdesk/internal/rbac"
	"trainingdesk/internal/report"
	"trainingdesk/internal/repository"
	"trainingdesk/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentService runs the trainer payment workflow.
type PaymentService interface {
	RequestPayment(ctx context.Context, actor rbac.Actor, applicationID uuid.UUID) (*model.Payment, error)
	Approve(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Payment, error)
	Reject(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Payment, error)
	Complete(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Payment, error)
	Get(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Payment, error)
	List(ctx context.Context, actor rbac.Actor, status model.PaymentStatus, page, limit int) (Page[model.Payment], error)
	Export(ctx context.Context, actor rbac.Actor, status model.PaymentStatus, w io.Writer) error
}

type paymentService struct {
	repo      repository.PaymentRepository
	appRepo   repository.ApplicationRepository
	rateRepo  repository.RateRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	notifier  Notifier
}

func NewPaymentService(
	repo repository.PaymentRepository,
	appRepo repository.ApplicationRepository,
	rateRepo repository.RateRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) PaymentService {
	return &paymentService{
		repo:      repo,
		appRepo:   appRepo,
		rateRepo:  rateRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		notifier:  notifierOrNop(notifier),
	}
}

// RequestPayment bills the training behind one of the trainer's applications.
// The training code becomes the payment reason, so a trainer can only ever be
// paid once per training.
func (s *paymentService) RequestPayment(ctx context.Context, actor rbac.Actor, applicationID uuid.UUID) (*model.Payment, error) {
	if err := rbac.Authorize(actor, rbac.PaymentRequest); err != nil {
		return nil, err
	}

	var payment *model.Payment
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.appRepo.GetByID(txCtx, applicationID)
		if err != nil {
			return apperr.FromDB(err, "application")
		}
		if app.TrainerID != actor.ID {
			return apperr.Forbidden("you can only request payment for your own applications")
		}
		if app.Status == model.ApplicationRejected || app.Status == model.ApplicationWithdrawn {
			return apperr.Conflict("cannot request payment for a %s application", app.Status)
		}
		if app.Training == nil {
			return apperr.NotFound("training not found")
		}
		training := app.Training
		reason := training.Code

		exists, err := s.repo.ExistsFor(txCtx, actor.ID, reason)
		if err != nil {
			return fmt.Errorf("failed to check existing payment: %w", err)
		}
		if exists {
			return apperr.Conflict("you have already requested payment for training %s", reason)
		}

		level, err := s.rateRepo.LevelFor(txCtx, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("no trainer level assigned")
			}
			return apperr.FromDB(err, "trainer level")
		}
		rate, err := s.rateRepo.RateFor(txCtx, level.Level)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("no payment rate for level %s", level.Level)
			}
			return apperr.FromDB(err, "payment rate")
		}

		amount, days, err := billing.Compute(training.GivenDate, training.EndDate, rate.PerDay)
		if err != nil {
			return err
		}

		trainingID := training.ID
		payment = &model.Payment{
			RequestedBy: actor.ID,
			Reason:      reason,
			TrainingID:  &trainingID,
			Status:      workflow.Payments.Initial,
			Amount:      amount,
			ServiceDays: days,
		}
		if err := s.repo.Create(txCtx, payment); err != nil {
			return apperr.FromDB(err, "payment")
		}

		entry := newAudit(&actor, model.ActionRequestPayment, payment.ID.String(), reason, map[string]any{
			"level":        level.Level,
			"per_day":      rate.PerDay.String(),
			"service_days": days,
			"amount":       amount.String(),
		})
		if err := s.auditRepo.Log(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(event("PAYMENT_REQUESTED", "payment", payment.ID, string(payment.Status), &actor, payment.RequestedBy))
	return s.repo.GetByID(ctx, payment.ID)
}

func (s *paymentService) Approve(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Payment, error) {
	return s.fire(ctx, actor, id, workflow.EventApprove, model.ActionApprovePayment)
}

func (s *paymentService) Reject(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Payment, error) {
	return s.fire(ctx, actor, id, workflow.EventReject, model.ActionRejectPayment)
}

// Complete marks an approved payment as paid out.
func (s *paymentService) Complete(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Payment, error) {
	return s.fire(ctx, actor, id, workflow.EventComplete, model.ActionCompletePayment)
}

func (s *paymentService) fire(ctx context.Context, actor rbac.Actor, id uuid.UUID, evt workflow.Event, action string) (*model.Payment, error) {
	if err := workflow.Payments.Authorize(actor, evt); err != nil {
		return nil, err
	}

	var to model.PaymentStatus
	var owner uuid.UUID
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		payment, err := s.repo.GetForUpdate(txCtx, id)
		if err != nil {
			return apperr.FromDB(err, "payment")
		}

		owner = payment.RequestedBy
		from := payment.Status
		to, err = workflow.Payments.Next(from, evt)
		if err != nil {
			return err
		}

		payment.Status = to
		if evt == workflow.EventApprove {
			now := time.Now()
			payment.ApprovedBy = &actor.ID
			payment.ApprovedAt = &now
		}
		if err := s.repo.Update(txCtx, payment); err != nil {
			return apperr.FromDB(err, "payment")
		}

		entry := newAudit(&actor, action, payment.ID.String(), payment.Reason, map[string]string{
			"from":   string(from),
			"to":     string(to),
			"amount": payment.Amount.String(),
		})
		if err := s.auditRepo.Log(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(event("PAYMENT_"+strings.ToUpper(string(to)), "payment", id, string(to), &actor, owner))
	return s.repo.GetByID(ctx, id)
}

func (s *paymentService) Get(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Payment, error) {
	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "payment")
	}
	if err := rbac.CanView(actor, payment.RequestedBy); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) List(ctx context.Context, actor rbac.Actor, status model.PaymentStatus, page, limit int) (Page[model.Payment], error) {
	page, limit = normalizePage(page, limit)
	filter := repository.PaymentFilter{Status: status}
	if !rbac.SeesAll(actor) {
		filter.RequestedBy = &actor.ID
	}
	payments, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return Page[model.Payment]{}, fmt.Errorf("failed to list payments: %w", err)
	}
	return newPage(payments, total, page, limit), nil
}

// Export writes every payment with the given status (all when empty) as an xlsx workbook.
func (s *paymentService) Export(ctx context.Context, actor rbac.Actor, status model.PaymentStatus, w io.Writer) error {
	if err := rbac.Authorize(actor, rbac.PaymentExport); err != nil {
		return err
	}
	payments, err := s.repo.ListAll(ctx, repository.PaymentFilter{Status: status})
	if err != nil {
		return fmt.Errorf("failed to load payments: %w", err)
	}
	return report.WritePayments(w, payments)
}
