package repository

import (
	"context"

	"trainingdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContractFilter struct {
	SignedBy   *uuid.UUID
	Completion model.ContractStatus
}

type ContractRepository interface {
	Create(ctx context.Context, contract *model.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	List(ctx context.Context, filter ContractFilter, page, limit int) ([]model.Contract, int64, error)
	Update(ctx context.Context, contract *model.Contract) error
}

type contractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(ctx context.Context, contract *model.Contract) error {
	return GetDB(ctx, r.db).Omit("TrainingType", "SignedBy").Create(contract).Error
}

func (r *contractRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	if err := GetDB(ctx, r.db).
		Preload("TrainingType").
		Preload("SignedBy").
		First(&contract, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&contract, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) List(ctx context.Context, filter ContractFilter, page, limit int) ([]model.Contract, int64, error) {
	var contracts []model.Contract
	query := GetDB(ctx, r.db).Model(&model.Contract{})
	if filter.SignedBy != nil {
		query = query.Where("signed_by_id = ?", *filter.SignedBy)
	}
	if filter.Completion != "" {
		query = query.Where("completion = ?", filter.Completion)
	}
	total, err := paginate(query, &contracts, "created_at desc", page, limit, "TrainingType", "SignedBy")
	if err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

func (r *contractRepository) Update(ctx context.Context, contract *model.Contract) error {
	return GetDB(ctx, r.db).Omit("TrainingType", "SignedBy").Save(contract).Error
}
