package service

import (
	"context"
	"fmt"

	"trainingdesk/internal/apperr"
	"trainingdesk/internal/billing"
	"trainingdesk/internal/model"
	"trainingdesk/internal/rbac"
	"trainingdesk/internal/repository"

	"github.com/google/uuid"
)

type TrainingTypeRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	DesignedFor string `json:"designed_for" validate:"max=100"`
	Requirement string `json:"requirement"`
}

type TrainingRequest struct {
	TrainingID     string    `json:"training_id" validate:"required,max=50"`
	TrainingTypeID uuid.UUID `json:"training_type_id" validate:"required"`
	GivenByID      uuid.UUID `json:"given_by_id" validate:"required"`
	GivenDate      string    `json:"given_date" validate:"required"`
	EndDate        string    `json:"end_date" validate:"required"`
	Location       string    `json:"location" validate:"max=200"`
}

// TrainingService manages training types and the scheduled trainings of each type.
type TrainingService interface {
	CreateType(ctx context.Context, actor rbac.Actor, req TrainingTypeRequest) (*model.TrainingType, error)
	GetType(ctx context.Context, id uuid.UUID) (*model.TrainingType, error)
	ListTypes(ctx context.Context, page, limit int) (Page[model.TrainingType], error)
	UpdateType(ctx context.Context, actor rbac.Actor, id uuid.UUID, req TrainingTypeRequest) (*model.TrainingType, error)
	DeleteType(ctx context.Context, actor rbac.Actor, id uuid.UUID) error

	Create(ctx context.Context, actor rbac.Actor, req TrainingRequest) (*model.Training, error)
	Get(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Training, error)
	List(ctx context.Context, actor rbac.Actor, page, limit int) (Page[model.Training], error)
	Update(ctx context.Context, actor rbac.Actor, id uuid.UUID, req TrainingRequest) (*model.Training, error)
	Delete(ctx context.Context, actor rbac.Actor, id uuid.UUID) error
}

type trainingService struct {
	typeRepo     repository.TrainingTypeRepository
	trainingRepo repository.TrainingRepository
	userRepo     repository.UserRepository
}

func NewTrainingService(
	typeRepo repository.TrainingTypeRepository,
	trainingRepo repository.TrainingRepository,
	userRepo repository.UserRepository,
) TrainingService {
	return &trainingService{typeRepo: typeRepo, trainingRepo: trainingRepo, userRepo: userRepo}
}

func (s *trainingService) CreateType(ctx context.Context, actor rbac.Actor, req TrainingTypeRequest) (*model.TrainingType, error) {
	if err := rbac.Authorize(actor, rbac.TrainingTypeManage); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	tt := &model.TrainingType{
		Name:        req.Name,
		Description: req.Description,
		DesignedFor: req.DesignedFor,
		Requirement: req.Requirement,
	}
	if err := s.typeRepo.Create(ctx, tt); err != nil {
		return nil, apperr.FromDB(err, "training type")
	}
	return tt, nil
}

func (s *trainingService) GetType(ctx context.Context, id uuid.UUID) (*model.TrainingType, error) {
	tt, err := s.typeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "training type")
	}
	return tt, nil
}

func (s *trainingService) ListTypes(ctx context.Context, page, limit int) (Page[model.TrainingType], error) {
	page, limit = normalizePage(page, limit)
	types, total, err := s.typeRepo.List(ctx, page, limit)
	if err != nil {
		return Page[model.TrainingType]{}, fmt.Errorf("failed to list training types: %w", err)
	}
	return newPage(types, total, page, limit), nil
}

func (s *trainingService) UpdateType(ctx context.Context, actor rbac.Actor, id uuid.UUID, req TrainingTypeRequest) (*model.TrainingType, error) {
	if err := rbac.Authorize(actor, rbac.TrainingTypeManage); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	tt, err := s.typeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "training type")
	}
	tt.Name = req.Name
	tt.Description = req.Description
	tt.DesignedFor = req.DesignedFor
	tt.Requirement = req.Requirement
	if err := s.typeRepo.Update(ctx, tt); err != nil {
		return nil, apperr.FromDB(err, "training type")
	}
	return tt, nil
}

func (s *trainingService) DeleteType(ctx context.Context, actor rbac.Actor, id uuid.UUID) error {
	if err := rbac.Authorize(actor, rbac.TrainingTypeManage); err != nil {
		return err
	}
	return apperr.FromDB(s.typeRepo.Delete(ctx, id), "training type")
}

// fill validates req against the store and copies it onto training.
func (s *trainingService) fill(ctx context.Context, training *model.Training, req TrainingRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	start, err := parseDate(req.GivenDate, "given_date")
	if err != nil {
		return err
	}
	end, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		return err
	}
	if _, err := billing.ServiceDays(start, end); err != nil {
		return err
	}

	if _, err := s.typeRepo.GetByID(ctx, req.TrainingTypeID); err != nil {
		return apperr.FromDB(err, "training type")
	}
	trainer, err := s.userRepo.GetByID(ctx, req.GivenByID)
	if err != nil {
		return apperr.FromDB(err, "trainer")
	}
	if trainer.Role != model.RoleTrainer {
		return apperr.Validation("given_by must be a trainer")
	}

	training.Code = req.TrainingID
	training.TrainingTypeID = req.TrainingTypeID
	training.GivenByID = req.GivenByID
	training.GivenDate = start
	training.EndDate = end
	training.Location = req.Location
	training.TrainingType = nil
	training.GivenBy = nil
	return nil
}

func (s *trainingService) Create(ctx context.Context, actor rbac.Actor, req TrainingRequest) (*model.Training, error) {
	if err := rbac.Authorize(actor, rbac.TrainingCreate); err != nil {
		return nil, err
	}
	training := &model.Training{}
	if err := s.fill(ctx, training, req); err != nil {
		return nil, err
	}
	if err := s.trainingRepo.Create(ctx, training); err != nil {
		return nil, apperr.FromDB(err, "training")
	}
	return s.trainingRepo.GetByID(ctx, training.ID)
}

// Get lets staff and admin read any training; a trainer reads the ones they conduct.
func (s *trainingService) Get(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Training, error) {
	training, err := s.trainingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "training")
	}
	if actor.Role == model.RoleTrainer {
		if err := rbac.CanView(actor, training.GivenByID); err != nil {
			return nil, err
		}
	}
	return training, nil
}

// List shows trainers only the trainings they conduct; everyone else sees all of them.
func (s *trainingService) List(ctx context.Context, actor rbac.Actor, page, limit int) (Page[model.Training], error) {
	page, limit = normalizePage(page, limit)
	var filter repository.TrainingFilter
	if actor.Role == model.RoleTrainer {
		filter.GivenBy = &actor.ID
	}
	trainings, total, err := s.trainingRepo.List(ctx, filter, page, limit)
	if err != nil {
		return Page[model.Training]{}, fmt.Errorf("failed to list trainings: %w", err)
	}
	return newPage(trainings, total, page, limit), nil
}

func (s *trainingService) Update(ctx context.Context, actor rbac.Actor, id uuid.UUID, req TrainingRequest) (*model.Training, error) {
	if err := rbac.Authorize(actor, rbac.TrainingUpdate); err != nil {
		return nil, err
	}
	training, err := s.trainingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "training")
	}
	if err := s.fill(ctx, training, req); err != nil {
		return nil, err
	}
	if err := s.trainingRepo.Update(ctx, training); err != nil {
		return nil, apperr.FromDB(err, "training")
	}
	return s.trainingRepo.GetByID(ctx, id)
}

func (s *trainingService) Delete(ctx context.Context, actor rbac.Actor, id uuid.UUID) error {
	if err := rbac.Authorize(actor, rbac.TrainingDelete); err != nil {
		return err
	}
	return apperr.FromDB(s.trainingRepo.Delete(ctx, id), "training")
}
