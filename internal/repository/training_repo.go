package repository

import (
	"context"

	"trainingdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TrainingTypeRepository interface {
	Create(ctx context.Context, tt *model.TrainingType) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.TrainingType, error)
	List(ctx context.Context, page, limit int) ([]model.TrainingType, int64, error)
	Update(ctx context.Context, tt *model.TrainingType) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type trainingTypeRepository struct {
	db *gorm.DB
}

func NewTrainingTypeRepository(db *gorm.DB) TrainingTypeRepository {
	return &trainingTypeRepository{db: db}
}

func (r *trainingTypeRepository) Create(ctx context.Context, tt *model.TrainingType) error {
	return GetDB(ctx, r.db).Create(tt).Error
}

func (r *trainingTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TrainingType, error) {
	var tt model.TrainingType
	if err := GetDB(ctx, r.db).First(&tt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tt, nil
}

func (r *trainingTypeRepository) List(ctx context.Context, page, limit int) ([]model.TrainingType, int64, error) {
	var types []model.TrainingType
	total, err := paginate(GetDB(ctx, r.db).Model(&model.TrainingType{}), &types, "name", page, limit)
	if err != nil {
		return nil, 0, err
	}
	return types, total, nil
}

func (r *trainingTypeRepository) Update(ctx context.Context, tt *model.TrainingType) error {
	return GetDB(ctx, r.db).Save(tt).Error
}

func (r *trainingTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(GetDB(ctx, r.db), &model.TrainingType{}, id)
}

// TrainingFilter narrows a training listing. A nil GivenBy lists everything.
type TrainingFilter struct {
	GivenBy *uuid.UUID
}

type TrainingRepository interface {
	Create(ctx context.Context, training *model.Training) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Training, error)
	List(ctx context.Context, filter TrainingFilter, page, limit int) ([]model.Training, int64, error)
	Update(ctx context.Context, training *model.Training) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type trainingRepository struct {
	db *gorm.DB
}

func NewTrainingRepository(db *gorm.DB) TrainingRepository {
	return &trainingRepository{db: db}
}

func (r *trainingRepository) Create(ctx context.Context, training *model.Training) error {
	return GetDB(ctx, r.db).Omit("TrainingType", "GivenBy").Create(training).Error
}

func (r *trainingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Training, error) {
	var training model.Training
	if err := GetDB(ctx, r.db).
		Preload("TrainingType").
		Preload("GivenBy").
		First(&training, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &training, nil
}

func (r *trainingRepository) List(ctx context.Context, filter TrainingFilter, page, limit int) ([]model.Training, int64, error) {
	var trainings []model.Training
	query := GetDB(ctx, r.db).Model(&model.Training{})
	if filter.GivenBy != nil {
		query = query.Where("given_by_id = ?", *filter.GivenBy)
	}
	total, err := paginate(query, &trainings, "given_date desc", page, limit, "TrainingType", "GivenBy")
	if err != nil {
		return nil, 0, err
	}
	return trainings, total, nil
}

func (r *trainingRepository) Update(ctx context.Context, training *model.Training) error {
	return GetDB(ctx, r.db).Omit("TrainingType", "GivenBy").Save(training).Error
}

func (r *trainingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(GetDB(ctx, r.db), &model.Training{}, id)
}

func deleteByID(db *gorm.DB, value any, id uuid.UUID) error {
	res := db.Delete(value, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
