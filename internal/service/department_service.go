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

type DepartmentRequest struct {
	Name    string     `json:"name" validate:"required,max=100"`
	HeadID  *uuid.UUID `json:"head_id"`
	Service string     `json:"service"`
}

type DepartmentService interface {
	Create(ctx context.Context, actor rbac.Actor, req DepartmentRequest) (*model.Department, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Department, error)
	List(ctx context.Context, page, limit int) (Page[model.Department], error)
	Update(ctx context.Context, actor rbac.Actor, id uuid.UUID, req DepartmentRequest) (*model.Department, error)
	Delete(ctx context.Context, actor rbac.Actor, id uuid.UUID) error
}

type departmentService struct {
	repo     repository.DepartmentRepository
	userRepo repository.UserRepository
}

func NewDepartmentService(repo repository.DepartmentRepository, userRepo repository.UserRepository) DepartmentService {
	return &departmentService{repo: repo, userRepo: userRepo}
}

// checkHead requires the department head, when given, to be a staff member.
func (s *departmentService) checkHead(ctx context.Context, headID *uuid.UUID) error {
	if headID == nil {
		return nil
	}
	head, err := s.userRepo.GetByID(ctx, *headID)
	if err != nil {
		return apperr.FromDB(err, "department head")
	}
	if head.Role != model.RoleStaff {
		return apperr.Validation("department head must be a staff member")
	}
	return nil
}

func (s *departmentService) Create(ctx context.Context, actor rbac.Actor, req DepartmentRequest) (*model.Department, error) {
	if err := rbac.Authorize(actor, rbac.DepartmentManage); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := s.checkHead(ctx, req.HeadID); err != nil {
		return nil, err
	}

	dept := &model.Department{Name: req.Name, HeadID: req.HeadID, Service: req.Service}
	if err := s.repo.Create(ctx, dept); err != nil {
		return nil, apperr.FromDB(err, "department")
	}
	return s.Get(ctx, dept.ID)
}

func (s *departmentService) Get(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	dept, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "department")
	}
	return dept, nil
}

func (s *departmentService) List(ctx context.Context, page, limit int) (Page[model.Department], error) {
	page, limit = normalizePage(page, limit)
	depts, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return Page[model.Department]{}, fmt.Errorf("failed to list departments: %w", err)
	}
	return newPage(depts, total, page, limit), nil
}

func (s *departmentService) Update(ctx context.Context, actor rbac.Actor, id uuid.UUID, req DepartmentRequest) (*model.Department, error) {
	if err := rbac.Authorize(actor, rbac.DepartmentManage); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	dept, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "department")
	}
	if err := s.checkHead(ctx, req.HeadID); err != nil {
		return nil, err
	}

	dept.Name = req.Name
	dept.HeadID = req.HeadID
	dept.Head = nil
	dept.Service = req.Service
	if err := s.repo.Update(ctx, dept); err != nil {
		return nil, apperr.FromDB(err, "department")
	}
	return s.Get(ctx, id)
}

func (s *departmentService) Delete(ctx context.Context, actor rbac.Actor, id uuid.UUID) error {
	if err := rbac.Authorize(actor, rbac.DepartmentManage); err != nil {
		return err
	}
	return apperr.FromDB(s.repo.Delete(ctx, id), "department")
}
