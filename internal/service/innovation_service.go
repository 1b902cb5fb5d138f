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

type InnovatorRequest struct {
	Email       string `json:"email" validate:"required,email"`
	FirstName   string `json:"first_name" validate:"required,max=150"`
	MiddleName  string `json:"middle_name" validate:"max=150"`
	LastName    string `json:"last_name" validate:"required,max=150"`
	Sex         string `json:"sex" validate:"required,oneof=male female"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=15"`
}

type InnovationRequest struct {
	InnovatorID uuid.UUID `json:"innovator_id" validate:"required"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required"`
}

// InnovationService keeps the register of outside innovators and what they submitted.
type InnovationService interface {
	CreateInnovator(ctx context.Context, actor rbac.Actor, req InnovatorRequest) (*model.Innovator, error)
	GetInnovator(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Innovator, error)
	ListInnovators(ctx context.Context, actor rbac.Actor, page, limit int) (Page[model.Innovator], error)
	UpdateInnovator(ctx context.Context, actor rbac.Actor, id uuid.UUID, req InnovatorRequest) (*model.Innovator, error)
	DeleteInnovator(ctx context.Context, actor rbac.Actor, id uuid.UUID) error

	CreateInnovation(ctx context.Context, actor rbac.Actor, req InnovationRequest) (*model.Innovation, error)
	GetInnovation(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Innovation, error)
	ListInnovations(ctx context.Context, actor rbac.Actor, innovatorID *uuid.UUID, page, limit int) (Page[model.Innovation], error)
	UpdateInnovation(ctx context.Context, actor rbac.Actor, id uuid.UUID, req InnovationRequest) (*model.Innovation, error)
	DeleteInnovation(ctx context.Context, actor rbac.Actor, id uuid.UUID) error
}

type innovationService struct {
	innovatorRepo  repository.InnovatorRepository
	innovationRepo repository.InnovationRepository
}

func NewInnovationService(innovatorRepo repository.InnovatorRepository, innovationRepo repository.InnovationRepository) InnovationService {
	return &innovationService{innovatorRepo: innovatorRepo, innovationRepo: innovationRepo}
}

func applyInnovator(i *model.Innovator, req InnovatorRequest) {
	i.Email = req.Email
	i.FirstName = req.FirstName
	i.MiddleName = req.MiddleName
	i.LastName = req.LastName
	i.Sex = model.Sex(req.Sex)
	i.PhoneNumber = req.PhoneNumber
}

func (s *innovationService) CreateInnovator(ctx context.Context, actor rbac.Actor, req InnovatorRequest) (*model.Innovator, error) {
	if err := rbac.Authorize(actor, rbac.InnovationManage); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	innovator := &model.Innovator{}
	applyInnovator(innovator, req)
	if err := s.innovatorRepo.Create(ctx, innovator); err != nil {
		return nil, apperr.FromDB(err, "innovator")
	}
	return innovator, nil
}

func (s *innovationService) GetInnovator(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Innovator, error) {
	if err := rbac.Authorize(actor, rbac.InnovationManage); err != nil {
		return nil, err
	}
	innovator, err := s.innovatorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "innovator")
	}
	return innovator, nil
}

func (s *innovationService) ListInnovators(ctx context.Context, actor rbac.Actor, page, limit int) (Page[model.Innovator], error) {
	if err := rbac.Authorize(actor, rbac.InnovationManage); err != nil {
		return Page[model.Innovator]{}, err
	}
	page, limit = normalizePage(page, limit)
	innovators, total, err := s.innovatorRepo.List(ctx, page, limit)
	if err != nil {
		return Page[model.Innovator]{}, fmt.Errorf("failed to list innovators: %w", err)
	}
	return newPage(innovators, total, page, limit), nil
}

func (s *innovationService) UpdateInnovator(ctx context.Context, actor rbac.Actor, id uuid.UUID, req InnovatorRequest) (*model.Innovator, error) {
	if err := rbac.Authorize(actor, rbac.InnovationManage); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	innovator, err := s.innovatorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "innovator")
	}
	applyInnovator(innovator, req)
	if err := s.innovatorRepo.Update(ctx, innovator); err != nil {
		return nil, apperr.FromDB(err, "innovator")
	}
	return innovator, nil
}

func (s *innovationService) DeleteInnovator(ctx context.Context, actor rbac.Actor, id uuid.UUID) error {
	if err := rbac.Authorize(actor, rbac.InnovationManage); err != nil {
		return err
	}
	return apperr.FromDB(s.innovatorRepo.Delete(ctx, id), "innovator")
}

func (s *innovationService) CreateInnovation(ctx context.Context, actor rbac.Actor, req InnovationRequest) (*model.Innovation, error) {
	if err := rbac.Authorize(actor, rbac.InnovationManage); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.innovatorRepo.GetByID(ctx, req.InnovatorID); err != nil {
		return nil, apperr.FromDB(err, "innovator")
	}
	innovation := &model.Innovation{
		InnovatorID: req.InnovatorID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.innovationRepo.Create(ctx, innovation); err != nil {
		return nil, apperr.FromDB(err, "innovation")
	}
	return s.innovationRepo.GetByID(ctx, innovation.ID)
}

func (s *innovationService) GetInnovation(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.Innovation, error) {
	if err := rbac.Authorize(actor, rbac.InnovationManage); err != nil {
		return nil, err
	}
	innovation, err := s.innovationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "innovation")
	}
	return innovation, nil
}

func (s *innovationService) ListInnovations(ctx context.Context, actor rbac.Actor, innovatorID *uuid.UUID, page, limit int) (Page[model.Innovation], error) {
	if err := rbac.Authorize(actor, rbac.InnovationManage); err != nil {
		return Page[model.Innovation]{}, err
	}
	page, limit = normalizePage(page, limit)
	innovations, total, err := s.innovationRepo.List(ctx, innovatorID, page, limit)
	if err != nil {
		return Page[model.Innovation]{}, fmt.Errorf("failed to list innovations: %w", err)
	}
	return newPage(innovations, total, page, limit), nil
}

func (s *innovationService) UpdateInnovation(ctx context.Context, actor rbac.Actor, id uuid.UUID, req InnovationRequest) (*model.Innovation, error) {
	if err := rbac.Authorize(actor, rbac.InnovationManage); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	innovation, err := s.innovationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "innovation")
	}
	if req.InnovatorID != innovation.InnovatorID {
		if _, err := s.innovatorRepo.GetByID(ctx, req.InnovatorID); err != nil {
			return nil, apperr.FromDB(err, "innovator")
		}
	}
	innovation.InnovatorID = req.InnovatorID
	innovation.Innovator = nil
	innovation.Title = req.Title
	innovation.Description = req.Description
	if err := s.innovationRepo.Update(ctx, innovation); err != nil {
		return nil, apperr.FromDB(err, "innovation")
	}
	return s.innovationRepo.GetByID(ctx, id)
}

func (s *innovationService) DeleteInnovation(ctx context.Context, actor rbac.Actor, id uuid.UUID) error {
	if err := rbac.Authorize(actor, rbac.InnovationManage); err != nil {
		return err
	}
	return apperr.FromDB(s.innovationRepo.Delete(ctx, id), "innovation")
}
