package repository

import (
	"context"

	"trainingdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentFilter narrows a payment listing. Zero values match everything.
type PaymentFilter struct {
	RequestedBy *uuid.UUID
	Status      model.PaymentStatus
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	ExistsFor(ctx context.Context, requestedBy uuid.UUID, reason string) (bool, error)
	List(ctx context.Context, filter PaymentFilter, page, limit int) ([]model.Payment, int64, error)
	ListAll(ctx context.Context, filter PaymentFilter) ([]model.Payment, error)
	Update(ctx context.Context, payment *model.Payment) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Omit("Requester", "Approver").Create(payment).Error
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).
		Preload("Requester").
		Preload("Approver").
		First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// ExistsFor reports whether requestedBy already asked to be paid for reason, in any status.
func (r *paymentRepository) ExistsFor(ctx context.Context, requestedBy uuid.UUID, reason string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Payment{}).
		Where("requested_by = ? AND reason = ?", requestedBy, reason).
		Count(&count).Error
	return count > 0, err
}

func (r *paymentRepository) filtered(ctx context.Context, filter PaymentFilter) *gorm.DB {
	query := GetDB(ctx, r.db).Model(&model.Payment{})
	if filter.RequestedBy != nil {
		query = query.Where("requested_by = ?", *filter.RequestedBy)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return query
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentFilter, page, limit int) ([]model.Payment, int64, error) {
	var payments []model.Payment
	total, err := paginate(r.filtered(ctx, filter), &payments, "created_at desc", page, limit, "Requester", "Approver")
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// ListAll returns every matching payment, oldest first. Used by the report export.
func (r *paymentRepository) ListAll(ctx context.Context, filter PaymentFilter) ([]model.Payment, error) {
	var payments []model.Payment
	if err := r.filtered(ctx, filter).
		Preload("Requester").
		Preload("Approver").
		Order("created_at").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Omit("Requester", "Approver").Save(payment).Error
}
