package repository

import (
	"context"
	"time"

	"trainingdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WarrantyFilter struct {
	AllowedFor *uuid.UUID
	Status     model.WarrantyStatus
}

type WarrantyRepository interface {
	Create(ctx context.Context, w *model.WarrantyMoney) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.WarrantyMoney, error)
	GetManyForUpdate(ctx context.Context, ids []uuid.UUID) ([]model.WarrantyMoney, error)
	ListExpiring(ctx context.Context, before time.Time) ([]model.WarrantyMoney, error)
	List(ctx context.Context, filter WarrantyFilter, page, limit int) ([]model.WarrantyMoney, int64, error)
	Update(ctx context.Context, w *model.WarrantyMoney) error
	SetStatus(ctx context.Context, ids []uuid.UUID, status model.WarrantyStatus) (int64, error)
}

type warrantyRepository struct {
	db *gorm.DB
}

func NewWarrantyRepository(db *gorm.DB) WarrantyRepository {
	return &warrantyRepository{db: db}
}

func (r *warrantyRepository) Create(ctx context.Context, w *model.WarrantyMoney) error {
	return GetDB(ctx, r.db).Omit("AllowedFor").Create(w).Error
}

func (r *warrantyRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WarrantyMoney, error) {
	var w model.WarrantyMoney
	if err := GetDB(ctx, r.db).Preload("AllowedFor").First(&w, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// GetManyForUpdate locks and returns the warranties among ids that exist.
func (r *warrantyRepository) GetManyForUpdate(ctx context.Context, ids []uuid.UUID) ([]model.WarrantyMoney, error) {
	var ws []model.WarrantyMoney
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Find(&ws).Error; err != nil {
		return nil, err
	}
	return ws, nil
}

// ListExpiring returns the active or on-hold warranties whose expiry date is before the given day.
func (r *warrantyRepository) ListExpiring(ctx context.Context, before time.Time) ([]model.WarrantyMoney, error) {
	var ws []model.WarrantyMoney
	if err := GetDB(ctx, r.db).
		Where("status IN ? AND expiry_date IS NOT NULL AND expiry_date < ?",
			[]model.WarrantyStatus{model.WarrantyActive, model.WarrantyPending}, before).
		Find(&ws).Error; err != nil {
		return nil, err
	}
	return ws, nil
}

func (r *warrantyRepository) List(ctx context.Context, filter WarrantyFilter, page, limit int) ([]model.WarrantyMoney, int64, error) {
	var ws []model.WarrantyMoney
	query := GetDB(ctx, r.db).Model(&model.WarrantyMoney{})
	if filter.AllowedFor != nil {
		query = query.Where("allowed_for_id = ?", *filter.AllowedFor)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	total, err := paginate(query, &ws, "created_at desc", page, limit, "AllowedFor")
	if err != nil {
		return nil, 0, err
	}
	return ws, total, nil
}

func (r *warrantyRepository) Update(ctx context.Context, w *model.WarrantyMoney) error {
	return GetDB(ctx, r.db).Omit("AllowedFor").Save(w).Error
}

func (r *warrantyRepository) SetStatus(ctx context.Context, ids []uuid.UUID, status model.WarrantyStatus) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.WarrantyMoney{}).
		Where("id IN ?", ids).
		Update("status", status)
	return res.RowsAffected, res.Error
}
