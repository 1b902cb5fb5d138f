package service

import (
	"context"
	"fmt"

	"trainingdesk/internal/apperr"
	"trainingdesk/internal/model"
	"trainingdesk/internal/rbac"
	"trainingdesk/internal/repository"

	"github.com/google/uuid"
)

type CertificateRequest struct {
	CertifiedID uuid.UUID `json:"certified_id" validate:"required"`
	TrainingID  uuid.UUID `json:"training_id" validate:"required"`
	GivenDate   string    `json:"given_date" validate:"required"`
}

type CertificateService interface {
	Issue(ctx context.Context, actor rbac.Actor, req CertificateRequest) (*model.Certificate, error)
	Get(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Certificate, error)
	List(ctx context.Context, actor rbac.Actor, page, limit int) (Page[model.Certificate], error)
}

type certificateService struct {
	repo         repository.CertificateRepository
	userRepo     repository.UserRepository
	trainingRepo repository.TrainingRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewCertificateService(
	repo repository.CertificateRepository,
	userRepo repository.UserRepository,
	trainingRepo repository.TrainingRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) CertificateService {
	return &certificateService{
		repo:         repo,
		userRepo:     userRepo,
		trainingRepo: trainingRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

func (s *certificateService) Issue(ctx context.Context, actor rbac.Actor, req CertificateRequest) (*model.Certificate, error) {
	if err := rbac.Authorize(actor, rbac.CertificateIssue); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	given, err := parseDate(req.GivenDate, "given_date")
	if err != nil {
		return nil, err
	}

	cert := &model.Certificate{
		CertifiedID: req.CertifiedID,
		TrainingID:  req.TrainingID,
		GivenDate:   given,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.userRepo.GetByID(txCtx, req.CertifiedID)
		if err != nil {
			return apperr.FromDB(err, "user")
		}
		training, err := s.trainingRepo.GetByID(txCtx, req.TrainingID)
		if err != nil {
			return apperr.FromDB(err, "training")
		}
		if err := s.repo.Create(txCtx, cert); err != nil {
			return apperr.FromDB(err, "certificate")
		}
		entry := newAudit(&actor, model.ActionIssueCertificate, cert.ID.String(), cert.CertificateID, map[string]string{
			"certified": user.Username,
			"training":  training.Code,
		})
		if err := s.auditRepo.Log(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cert.ID)
}

func (s *certificateService) Get(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Certificate, error) {
	cert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "certificate")
	}
	if err := rbac.CanView(actor, cert.CertifiedID); err != nil {
		return nil, err
	}
	return cert, nil
}

func (s *certificateService) List(ctx context.Context, actor rbac.Actor, page, limit int) (Page[model.Certificate], error) {
	page, limit = normalizePage(page, limit)
	var certifiedID *uuid.UUID
	if !rbac.SeesAll(actor) {
		certifiedID = &actor.ID
	}
	certs, total, err := s.repo.List(ctx, certifiedID, page, limit)
	if err != nil {
		return Page[model.Certificate]{}, fmt.Errorf("failed to list certificates: %w", err)
	}
	return newPage(certs, total, page, limit), nil
}
