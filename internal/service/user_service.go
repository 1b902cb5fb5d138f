package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trainingdesk/internal/apperr"
	"trainingdesk/internal/auth"
	"trainingdesk/internal/model"
	"trainingdesk/internal/rbac"
	"trainingdesk/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,max=150"`
	Email           string `json:"email" validate:"required,email"`
	FirstName       string `json:"first_name" validate:"required,max=150"`
	MiddleName      string `json:"middle_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"required,max=150"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty,max=15"`
	Sex             string `json:"sex" validate:"required,oneof=male female"`
	Role            string `json:"role" validate:"omitempty"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest only touches the fields that are set.
type UpdateProfileRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	FirstName   *string `json:"first_name" validate:"omitempty,max=150"`
	MiddleName  *string `json:"middle_name" validate:"omitempty,max=150"`
	LastName    *string `json:"last_name" validate:"omitempty,max=150"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=15"`
	Sex         *string `json:"sex" validate:"omitempty,oneof=male female"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	MiddleName  string    `json:"middle_name"`
	LastName    string    `json:"last_name"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	Sex         string    `json:"sex"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   string    `json:"created_at"`
}

// UserService covers accounts: registration, login, profile and role listings.
type UserService interface {
	Register(ctx context.Context, actor *rbac.Actor, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Profile(ctx context.Context, actor rbac.Actor) (*UserResponse, error)
	UpdateProfile(ctx context.Context, actor rbac.Actor, req UpdateProfileRequest) (*UserResponse, error)
	ListByRole(ctx context.Context, actor rbac.Actor, role model.Role, page, limit int) (Page[UserResponse], error)
}

type userService struct {
	repo      repository.UserRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	tokens    *auth.Tokens
}

// NewUserService returns a new instance of UserService
func NewUserService(
	repo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	tokens *auth.Tokens,
) UserService {
	return &userService{repo: repo, auditRepo: auditRepo, txManager: txManager, tokens: tokens}
}

func mapToResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		MiddleName:  user.MiddleName,
		LastName:    user.LastName,
		FullName:    user.FullName(),
		PhoneNumber: user.PhoneNumber,
		Sex:         string(user.Sex),
		Role:        string(user.Role),
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *userService) Register(ctx context.Context, actor *rbac.Actor, req RegisterRequest) (*AuthResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	role := model.RoleTrainee
	if req.Role != "" {
		role = model.Role(strings.ToLower(req.Role))
	}
	if err := rbac.CanRegister(actor, role); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, apperr.Conflict("username already exists")
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Conflict("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:    req.Username,
		Email:       req.Email,
		FirstName:   req.FirstName,
		MiddleName:  req.MiddleName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Sex:         model.Sex(req.Sex),
		Role:        role,
		Password:    string(hashedPassword),
		IsActive:    true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, user); err != nil {
			return apperr.FromDB(err, "user")
		}
		entry := newAudit(actor, model.ActionRegisterUser, user.ID.String(), user.Username, map[string]string{"role": string(role)})
		if err := s.auditRepo.Log(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.authResponse(user)
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, apperr.FromDB(err, "user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("user account is disabled")
	}

	return s.authResponse(user)
}

func (s *userService) authResponse(user *model.User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: mapToResponse(user), Token: token}, nil
}

func (s *userService) Profile(ctx context.Context, actor rbac.Actor) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	res := mapToResponse(user)
	return &res, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor rbac.Actor, req UpdateProfileRequest) (*UserResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, apperr.FromDB(err, "user")
	}

	if req.Email != nil && *req.Email != user.Email {
		if _, err := s.repo.GetByEmail(ctx, *req.Email); err == nil {
			return nil, apperr.Conflict("email already exists")
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.MiddleName != nil {
		user.MiddleName = *req.MiddleName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Sex != nil {
		user.Sex = model.Sex(*req.Sex)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	res := mapToResponse(user)
	return &res, nil
}

func (s *userService) ListByRole(ctx context.Context, actor rbac.Actor, role model.Role, page, limit int) (Page[UserResponse], error) {
	action, ok := rbac.ListActionFor(role)
	if !ok {
		return Page[UserResponse]{}, apperr.Validation("cannot list users with role %q", role)
	}
	if err := rbac.Authorize(actor, action); err != nil {
		return Page[UserResponse]{}, err
	}

	page, limit = normalizePage(page, limit)
	users, total, err := s.repo.ListByRole(ctx, role, page, limit)
	if err != nil {
		return Page[UserResponse]{}, fmt.Errorf("failed to list users: %w", err)
	}

	res := make([]UserResponse, 0, len(users))
	for i := range users {
		res = append(res, mapToResponse(&users[i]))
	}
	return newPage(res, total, page, limit), nil
}
