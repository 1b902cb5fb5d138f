package service

import (
	"context"
	"errors"
	"fmt"

	"trainingdesk/internal/apperr"
	"trainingdesk/internal/model"
	"trainingdesk/internal/rbac"
	"trainingdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RateRequest struct {
	Level  string          `json:"level" validate:"required,max=15"`
	PerDay decimal.Decimal `json:"per_day"`
}

type LevelRequest struct {
	TrainerID uuid.UUID `json:"trainer_id" validate:"required"`
	Level     string    `json:"level" validate:"required,max=15"`
}

// RateService manages the per-day rate table and which level each trainer is paid at.
type RateService interface {
	ListRates(ctx context.Context, actor rbac.Actor) ([]model.PaymentRate, error)
	CreateRate(ctx context.Context, actor rbac.Actor, req RateRequest) (*model.PaymentRate, error)
	UpdateRate(ctx context.Context, actor rbac.Actor, level string, perDay decimal.Decimal) (*model.PaymentRate, error)

	AssignLevel(ctx context.Context, actor rbac.Actor, req LevelRequest) (*model.TrainerLevel, error)
	UpdateLevel(ctx context.Context, actor rbac.Actor, req LevelRequest) (*model.TrainerLevel, error)
	ListLevels(ctx context.Context, actor rbac.Actor, page, limit int) (Page[model.TrainerLevel], error)
	LevelFor(ctx context.Context, actor rbac.Actor, trainerID uuid.UUID) (*model.TrainerLevel, error)
}

type rateService struct {
	repo      repository.RateRepository
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewRateService(
	repo repository.RateRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) RateService {
	return &rateService{repo: repo, userRepo: userRepo, auditRepo: auditRepo, txManager: txManager}
}

func (s *rateService) ListRates(ctx context.Context, actor rbac.Actor) ([]model.PaymentRate, error) {
	if err := rbac.Authorize(actor, rbac.RateRead); err != nil {
		return nil, err
	}
	rates, err := s.repo.ListRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment rates: %w", err)
	}
	return rates, nil
}

func (s *rateService) CreateRate(ctx context.Context, actor rbac.Actor, req RateRequest) (*model.PaymentRate, error) {
	if err := rbac.Authorize(actor, rbac.RateManage); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.PerDay.IsNegative() {
		return nil, apperr.Validation("per_day must not be negative")
	}

	rate := &model.PaymentRate{Level: req.Level, PerDay: req.PerDay}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateRate(txCtx, rate); err != nil {
			return apperr.FromDB(err, "payment rate")
		}
		return s.audit(txCtx, actor, rate)
	})
	if err != nil {
		return nil, err
	}
	return rate, nil
}

func (s *rateService) UpdateRate(ctx context.Context, actor rbac.Actor, level string, perDay decimal.Decimal) (*model.PaymentRate, error) {
	if err := rbac.Authorize(actor, rbac.RateManage); err != nil {
		return nil, err
	}
	if perDay.IsNegative() {
		return nil, apperr.Validation("per_day must not be negative")
	}

	var rate *model.PaymentRate
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		rate, err = s.repo.RateFor(txCtx, level)
		if err != nil {
			return apperr.FromDB(err, "payment rate")
		}
		rate.PerDay = perDay
		if err := s.repo.UpdateRate(txCtx, rate); err != nil {
			return apperr.FromDB(err, "payment rate")
		}
		return s.audit(txCtx, actor, rate)
	})
	if err != nil {
		return nil, err
	}
	return rate, nil
}

func (s *rateService) audit(ctx context.Context, actor rbac.Actor, rate *model.PaymentRate) error {
	entry := newAudit(&actor, model.ActionSetPaymentRate, rate.Level, rate.Level, map[string]string{
		"per_day": rate.PerDay.String(),
	})
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// checkAssignment verifies the user is a trainer and the level exists in the rate table.
func (s *rateService) checkAssignment(ctx context.Context, req LevelRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(ctx, req.TrainerID)
	if err != nil {
		return apperr.FromDB(err, "trainer")
	}
	if user.Role != model.RoleTrainer {
		return apperr.Validation("only trainers can be assigned a level")
	}
	if _, err := s.repo.RateFor(ctx, req.Level); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("payment rate for level %s not found", req.Level)
		}
		return apperr.FromDB(err, "payment rate")
	}
	return nil
}

func (s *rateService) AssignLevel(ctx context.Context, actor rbac.Actor, req LevelRequest) (*model.TrainerLevel, error) {
	if err := rbac.Authorize(actor, rbac.LevelAssign); err != nil {
		return nil, err
	}

	assignment := &model.TrainerLevel{TrainerID: req.TrainerID, Level: req.Level}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checkAssignment(txCtx, req); err != nil {
			return err
		}
		if _, err := s.repo.LevelFor(txCtx, req.TrainerID); err == nil {
			return apperr.Conflict("trainer already has a level, update it instead")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.FromDB(err, "trainer level")
		}
		if err := s.repo.AssignLevel(txCtx, assignment); err != nil {
			return apperr.FromDB(err, "trainer level")
		}
		entry := newAudit(&actor, model.ActionAssignTrainerLevel, req.TrainerID.String(), req.Level, nil)
		if err := s.auditRepo.Log(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.LevelFor(ctx, req.TrainerID)
}

func (s *rateService) UpdateLevel(ctx context.Context, actor rbac.Actor, req LevelRequest) (*model.TrainerLevel, error) {
	if err := rbac.Authorize(actor, rbac.LevelAssign); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checkAssignment(txCtx, req); err != nil {
			return err
		}
		current, err := s.repo.LevelFor(txCtx, req.TrainerID)
		if err != nil {
			return apperr.FromDB(err, "trainer level")
		}
		current.Level = req.Level
		if err := s.repo.UpdateLevel(txCtx, current); err != nil {
			return apperr.FromDB(err, "trainer level")
		}
		entry := newAudit(&actor, model.ActionAssignTrainerLevel, req.TrainerID.String(), req.Level, nil)
		if err := s.auditRepo.Log(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.LevelFor(ctx, req.TrainerID)
}

func (s *rateService) ListLevels(ctx context.Context, actor rbac.Actor, page, limit int) (Page[model.TrainerLevel], error) {
	if err := rbac.Authorize(actor, rbac.LevelAssign); err != nil {
		return Page[model.TrainerLevel]{}, err
	}
	page, limit = normalizePage(page, limit)
	levels, total, err := s.repo.ListLevels(ctx, page, limit)
	if err != nil {
		return Page[model.TrainerLevel]{}, fmt.Errorf("failed to list trainer levels: %w", err)
	}
	return newPage(levels, total, page, limit), nil
}

// LevelFor is open to the trainer themselves and to staff.
func (s *rateService) LevelFor(ctx context.Context, actor rbac.Actor, trainerID uuid.UUID) (*model.TrainerLevel, error) {
	if err := rbac.CanView(actor, trainerID); err != nil {
		return nil, err
	}
	level, err := s.repo.LevelFor(ctx, trainerID)
	if err != nil {
		return nil, apperr.FromDB(err, "trainer level")
	}
	return level, nil
}
