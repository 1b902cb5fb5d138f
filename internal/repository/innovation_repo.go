package repository

import (
	"context"

	"trainingdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InnovatorRepository interface {
	Create(ctx context.Context, innovator *model.Innovator) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Innovator, error)
	List(ctx context.Context, page, limit int) ([]model.Innovator, int64, error)
	Update(ctx context.Context, innovator *model.Innovator) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type innovatorRepository struct {
	db *gorm.DB
}

func NewInnovatorRepository(db *gorm.DB) InnovatorRepository {
	return &innovatorRepository{db: db}
}

func (r *innovatorRepository) Create(ctx context.Context, innovator *model.Innovator) error {
	return GetDB(ctx, r.db).Create(innovator).Error
}

func (r *innovatorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Innovator, error) {
	var innovator model.Innovator
	if err := GetDB(ctx, r.db).First(&innovator, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &innovator, nil
}

func (r *innovatorRepository) List(ctx context.Context, page, limit int) ([]model.Innovator, int64, error) {
	var innovators []model.Innovator
	total, err := paginate(GetDB(ctx, r.db).Model(&model.Innovator{}), &innovators, "last_name, first_name", page, limit)
	if err != nil {
		return nil, 0, err
	}
	return innovators, total, nil
}

func (r *innovatorRepository) Update(ctx context.Context, innovator *model.Innovator) error {
	return GetDB(ctx, r.db).Save(innovator).Error
}

func (r *innovatorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(GetDB(ctx, r.db), &model.Innovator{}, id)
}

type InnovationRepository interface {
	Create(ctx context.Context, innovation *model.Innovation) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Innovation, error)
	List(ctx context.Context, innovatorID *uuid.UUID, page, limit int) ([]model.Innovation, int64, error)
	Update(ctx context.Context, innovation *model.Innovation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type innovationRepository struct {
	db *gorm.DB
}

func NewInnovationRepository(db *gorm.DB) InnovationRepository {
	return &innovationRepository{db: db}
}

func (r *innovationRepository) Create(ctx context.Context, innovation *model.Innovation) error {
	return GetDB(ctx, r.db).Omit("Innovator").Create(innovation).Error
}

func (r *innovationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Innovation, error) {
	var innovation model.Innovation
	if err := GetDB(ctx, r.db).Preload("Innovator").First(&innovation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &innovation, nil
}

func (r *innovationRepository) List(ctx context.Context, innovatorID *uuid.UUID, page, limit int) ([]model.Innovation, int64, error) {
	var innovations []model.Innovation
	query := GetDB(ctx, r.db).Model(&model.Innovation{})
	if innovatorID != nil {
		query = query.Where("innovator_id = ?", *innovatorID)
	}
	total, err := paginate(query, &innovations, "created_at desc", page, limit, "Innovator")
	if err != nil {
		return nil, 0, err
	}
	return innovations, total, nil
}

func (r *innovationRepository) Update(ctx context.Context, innovation *model.Innovation) error {
	return GetDB(ctx, r.db).Omit("Innovator").Save(innovation).Error
}

func (r *innovationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(GetDB(ctx, r.db), &model.Innovation{}, id)
}
