package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trainingdesk/internal/apperr"
	"trainingdesk/internal/billing"
	"trainingdesk/internal/model"
	"trainingdesk/internal/rbac"
	"trainingdesk/internal/repository"
	"trainingdesk/internal/workflow"

	"github.com/google/uuid"
)

type ContractRequest struct {
	DocumentURL    string    `json:"document_url" validate:"omitempty,url"`
	TrainingTypeID uuid.UUID `json:"training_type_id" validate:"required"`
	EndDate        string    `json:"end_date" validate:"required"`
	Terms          string    `json:"terms_and_conditions"`
}

// ContractService manages contracts and their completion workflow.
type ContractService interface {
	Create(ctx context.Context, actor rbac.Actor, req ContractRequest) (*model.Contract, error)
	Activate(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Contract, error)
	Complete(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Contract, error)
	Terminate(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Contract, error)
	Get(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Contract, error)
	List(ctx context.Context, actor rbac.Actor, completion model.ContractStatus, page, limit int) (Page[model.Contract], error)
}

type contractService struct {
	repo      repository.ContractRepository
	typeRepo  repository.TrainingTypeRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	notifier  Notifier
	now       func() time.Time
}

func NewContractService(
	repo repository.ContractRepository,
	typeRepo repository.TrainingTypeRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) ContractService {
	return &contractService{
		repo:      repo,
		typeRepo:  typeRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		notifier:  notifierOrNop(notifier),
		now:       time.Now,
	}
}

// Create records a contract signed by the actor today.
func (s *contractService) Create(ctx context.Context, actor rbac.Actor, req ContractRequest) (*model.Contract, error) {
	if err := rbac.Authorize(actor, rbac.ContractCreate); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	end, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		return nil, err
	}
	signed := billing.DateOnly(s.now())
	if end.Before(signed) {
		return nil, apperr.Validation("end_date must not be before the signing date %s", signed.Format(dateLayout))
	}

	contract := &model.Contract{
		DocumentURL:    req.DocumentURL,
		TrainingTypeID: req.TrainingTypeID,
		SignedByID:     actor.ID,
		Completion:     workflow.Contracts.Initial,
		SignedDate:     signed,
		EndDate:        end,
		Terms:          req.Terms,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		tt, err := s.typeRepo.GetByID(txCtx, req.TrainingTypeID)
		if err != nil {
			return apperr.FromDB(err, "training type")
		}
		if err := s.repo.Create(txCtx, contract); err != nil {
			return apperr.FromDB(err, "contract")
		}
		entry := newAudit(&actor, model.ActionCreateContract, contract.ID.String(), contract.ContractNo, map[string]string{
			"training_type": tt.Name,
			"end_date":      req.EndDate,
		})
		if err := s.auditRepo.Log(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(event("CONTRACT_CREATED", "contract", contract.ID, string(contract.Completion), &actor, contract.SignedByID))
	return s.repo.GetByID(ctx, contract.ID)
}

func (s *contractService) Activate(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Contract, error) {
	return s.fire(ctx, actor, id, workflow.EventActivate, model.ActionActivateContract)
}

func (s *contractService) Complete(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Contract, error) {
	return s.fire(ctx, actor, id, workflow.EventComplete, model.ActionCompleteContract)
}

// Terminate ends a draft or active contract. A completed contract stays completed.
func (s *contractService) Terminate(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Contract, error) {
	return s.fire(ctx, actor, id, workflow.EventTerminate, model.ActionTerminateContract)
}

func (s *contractService) fire(ctx context.Context, actor rbac.Actor, id uuid.UUID, evt workflow.Event, action string) (*model.Contract, error) {
	if err := workflow.Contracts.Authorize(actor, evt); err != nil {
		return nil, err
	}

	var to model.ContractStatus
	var owner uuid.UUID
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		contract, err := s.repo.GetForUpdate(txCtx, id)
		if err != nil {
			return apperr.FromDB(err, "contract")
		}

		owner = contract.SignedByID
		from := contract.Completion
		to, err = workflow.Contracts.Next(from, evt)
		if err != nil {
			return err
		}

		contract.Completion = to
		if err := s.repo.Update(txCtx, contract); err != nil {
			return apperr.FromDB(err, "contract")
		}

		entry := newAudit(&actor, action, contract.ID.String(), contract.ContractNo, map[string]string{
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

	s.notifier.Publish(event("CONTRACT_"+strings.ToUpper(string(to)), "contract", id, string(to), &actor, owner))
	return s.repo.GetByID(ctx, id)
}

func (s *contractService) Get(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Contract, error) {
	contract, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "contract")
	}
	if err := rbac.CanView(actor, contract.SignedByID); err != nil {
		return nil, err
	}
	return contract, nil
}

func (s *contractService) List(ctx context.Context, actor rbac.Actor, completion model.ContractStatus, page, limit int) (Page[model.Contract], error) {
	page, limit = normalizePage(page, limit)
	filter := repository.ContractFilter{Completion: completion}
	if !rbac.SeesAll(actor) {
		filter.SignedBy = &actor.ID
	}
	contracts, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return Page[model.Contract]{}, fmt.Errorf("failed to list contracts: %w", err)
	}
	return newPage(contracts, total, page, limit), nil
}
