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
	"github.com/shopspring/decimal"
)

type WarrantyRequest struct {
	Guarantee    string          `json:"guarantee" validate:"required,max=100"`
	AllowedForID uuid.UUID       `json:"allowed_for_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	ExpiryDate   string          `json:"expiry_date"`
}

// UpdateWarrantyRequest changes only the fields that are set. A status change
// goes through the warranty workflow like any other transition.
type UpdateWarrantyRequest struct {
	Guarantee  *string          `json:"guarantee" validate:"omitempty,max=100"`
	Amount     *decimal.Decimal `json:"amount"`
	ExpiryDate *string          `json:"expiry_date"`
	Status     *string          `json:"status" validate:"omitempty,oneof=active pending expired claimed"`
}

type WarrantyListFilter struct {
	AllowedFor *uuid.UUID
	Status     model.WarrantyStatus
}

// WarrantyService manages warranty money records.
type WarrantyService interface {
	Create(ctx context.Context, actor rbac.Actor, req WarrantyRequest) (*model.WarrantyMoney, error)
	Get(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.WarrantyMoney, error)
	List(ctx context.Context, actor rbac.Actor, filter WarrantyListFilter, page, limit int) (Page[model.WarrantyMoney], error)
	Update(ctx context.Context, actor rbac.Actor, id uuid.UUID, req UpdateWarrantyRequest) (*model.WarrantyMoney, error)
	MarkExpired(ctx context.Context, actor rbac.Actor, ids []uuid.UUID) ([]model.WarrantyMoney, error)
	MarkClaimed(ctx context.Context, actor rbac.Actor, ids []uuid.UUID) ([]model.WarrantyMoney, error)
	SweepExpired(ctx context.Context, today time.Time) (int, error)
}

type warrantyService struct {
	repo      repository.WarrantyRepository
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	notifier  Notifier
}

func NewWarrantyService(
	repo repository.WarrantyRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
) WarrantyService {
	return &warrantyService{
		repo:      repo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		notifier:  notifierOrNop(notifier),
	}
}

// statusEvents maps a requested status onto the event that reaches it.
var statusEvents = map[model.WarrantyStatus]workflow.Event{
	model.WarrantyActive:  workflow.EventReactivate,
	model.WarrantyPending: workflow.EventHold,
	model.WarrantyExpired: workflow.EventExpire,
	model.WarrantyClaimed: workflow.EventClaim,
}

func parseExpiry(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(value, "expiry_date")
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *warrantyService) Create(ctx context.Context, actor rbac.Actor, req WarrantyRequest) (*model.WarrantyMoney, error) {
	if err := rbac.Authorize(actor, rbac.WarrantyCreate); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Amount.IsNegative() {
		return nil, apperr.Validation("amount must not be negative")
	}
	expiry, err := parseExpiry(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	w := &model.WarrantyMoney{
		Guarantee:    req.Guarantee,
		AllowedForID: req.AllowedForID,
		Amount:       req.Amount,
		Status:       workflow.Warranties.Initial,
		ExpiryDate:   expiry,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.userRepo.GetByID(txCtx, req.AllowedForID)
		if err != nil {
			return apperr.FromDB(err, "trainee")
		}
		if user.Role != model.RoleTrainee {
			return apperr.Validation("warranty money can only be held for a trainee")
		}
		if err := s.repo.Create(txCtx, w); err != nil {
			return apperr.FromDB(err, "warranty")
		}
		entry := newAudit(&actor, model.ActionCreateWarranty, w.ID.String(), w.Guarantee, map[string]string{
			"allowed_for": user.Username,
			"amount":      w.Amount.String(),
		})
		if err := s.auditRepo.Log(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, w.ID)
}

func (s *warrantyService) Get(ctx context.Context, actor rbac.Actor, id uuid.UUID) (*model.WarrantyMoney, error) {
	if err := rbac.Authorize(actor, rbac.WarrantyRead); err != nil {
		return nil, err
	}
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "warranty")
	}
	return w, nil
}

func (s *warrantyService) List(ctx context.Context, actor rbac.Actor, filter WarrantyListFilter, page, limit int) (Page[model.WarrantyMoney], error) {
	if err := rbac.Authorize(actor, rbac.WarrantyRead); err != nil {
		return Page[model.WarrantyMoney]{}, err
	}
	page, limit = normalizePage(page, limit)
	ws, total, err := s.repo.List(ctx, repository.WarrantyFilter{AllowedFor: filter.AllowedFor, Status: filter.Status}, page, limit)
	if err != nil {
		return Page[model.WarrantyMoney]{}, fmt.Errorf("failed to list warranties: %w", err)
	}
	return newPage(ws, total, page, limit), nil
}

func (s *warrantyService) Update(ctx context.Context, actor rbac.Actor, id uuid.UUID, req UpdateWarrantyRequest) (*model.WarrantyMoney, error) {
	if err := rbac.Authorize(actor, rbac.WarrantyUpdate); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	var evt workflow.Event
	if req.Status != nil {
		evt = statusEvents[model.WarrantyStatus(*req.Status)]
		if err := workflow.Warranties.Authorize(actor, evt); err != nil {
			return nil, err
		}
	}
	if req.Amount != nil && req.Amount.IsNegative() {
		return nil, apperr.Validation("amount must not be negative")
	}

	var changed bool
	var to model.WarrantyStatus
	var owner uuid.UUID
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		list, err := s.repo.GetManyForUpdate(txCtx, []uuid.UUID{id})
		if err != nil {
			return fmt.Errorf("failed to load warranty: %w", err)
		}
		if len(list) == 0 {
			return apperr.NotFound("warranty not found")
		}
		w := &list[0]
		owner = w.AllowedForID

		from := w.Status
		to = from
		if evt != "" && model.WarrantyStatus(*req.Status) != from {
			if to, err = workflow.Warranties.Next(from, evt); err != nil {
				return err
			}
			changed = true
		}

		w.Status = to
		if req.Guarantee != nil {
			w.Guarantee = *req.Guarantee
		}
		if req.Amount != nil {
			w.Amount = *req.Amount
		}
		if req.ExpiryDate != nil {
			if w.ExpiryDate, err = parseExpiry(*req.ExpiryDate); err != nil {
				return err
			}
		}
		if err := s.repo.Update(txCtx, w); err != nil {
			return apperr.FromDB(err, "warranty")
		}

		entry := newAudit(&actor, model.ActionUpdateWarranty, w.ID.String(), w.Guarantee, map[string]string{
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

	if changed {
		s.notifier.Publish(event("WARRANTY_"+strings.ToUpper(string(to)), "warranty", id, string(to), &actor, owner))
	}
	return s.repo.GetByID(ctx, id)
}

// MarkExpired expires every listed warranty or none of them.
func (s *warrantyService) MarkExpired(ctx context.Context, actor rbac.Actor, ids []uuid.UUID) ([]model.WarrantyMoney, error) {
	return s.bulk(ctx, actor, ids, workflow.EventExpire, model.ActionExpireWarranty)
}

// MarkClaimed claims every listed warranty or none of them.
func (s *warrantyService) MarkClaimed(ctx context.Context, actor rbac.Actor, ids []uuid.UUID) ([]model.WarrantyMoney, error) {
	return s.bulk(ctx, actor, ids, workflow.EventClaim, model.ActionClaimWarranty)
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (s *warrantyService) bulk(ctx context.Context, actor rbac.Actor, ids []uuid.UUID, evt workflow.Event, action string) ([]model.WarrantyMoney, error) {
	if err := workflow.Warranties.Authorize(actor, evt); err != nil {
		return nil, err
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, apperr.Validation("ids must not be empty")
	}

	var updated []model.WarrantyMoney
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		list, err := s.repo.GetManyForUpdate(txCtx, ids)
		if err != nil {
			return fmt.Errorf("failed to load warranties: %w", err)
		}
		if len(list) != len(ids) {
			found := make(map[uuid.UUID]bool, len(list))
			for _, w := range list {
				found[w.ID] = true
			}
			var missing []string
			for _, id := range ids {
				if !found[id] {
					missing = append(missing, id.String())
				}
			}
			return apperr.NotFound("warranties not found: %s", strings.Join(missing, ", "))
		}

		var to model.WarrantyStatus
		for i := range list {
			if to, err = workflow.Warranties.Next(list[i].Status, evt); err != nil {
				return err
			}
		}

		if _, err := s.repo.SetStatus(txCtx, ids, to); err != nil {
			return fmt.Errorf("failed to update warranties: %w", err)
		}
		for i := range list {
			entry := newAudit(&actor, action, list[i].ID.String(), list[i].Guarantee, map[string]string{
				"from": string(list[i].Status),
				"to":   string(to),
			})
			if err := s.auditRepo.Log(txCtx, entry); err != nil {
				return fmt.Errorf("failed to write audit log: %w", err)
			}
			list[i].Status = to
		}
		updated = list
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, w := range updated {
		s.notifier.Publish(event("WARRANTY_"+strings.ToUpper(string(w.Status)), "warranty", w.ID, string(w.Status), &actor, w.AllowedForID))
	}
	return updated, nil
}

// SweepExpired expires every active or on-hold warranty whose expiry date is before today.
// It runs without an actor, so its audit rows carry no user.
func (s *warrantyService) SweepExpired(ctx context.Context, today time.Time) (int, error) {
	var expired []model.WarrantyMoney
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		expired, err = s.repo.ListExpiring(txCtx, billing.DateOnly(today))
		if err != nil {
			return fmt.Errorf("failed to list expiring warranties: %w", err)
		}
		if len(expired) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(expired))
		for i, w := range expired {
			ids[i] = w.ID
		}
		if _, err := s.repo.SetStatus(txCtx, ids, model.WarrantyExpired); err != nil {
			return fmt.Errorf("failed to expire warranties: %w", err)
		}
		for _, w := range expired {
			entry := newAudit(nil, model.ActionExpireWarranty, w.ID.String(), w.Guarantee, map[string]string{
				"from":   string(w.Status),
				"to":     string(model.WarrantyExpired),
				"reason": "expiry date passed",
			})
			if err := s.auditRepo.Log(txCtx, entry); err != nil {
				return fmt.Errorf("failed to write audit log: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, w := range expired {
		s.notifier.Publish(event("WARRANTY_EXPIRED", "warranty", w.ID, string(model.WarrantyExpired), nil, w.AllowedForID))
	}
	return len(expired), nil
}
