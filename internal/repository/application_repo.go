package repository

import (
	"context"

	"trainingdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplicationFilter narrows an application listing. Zero values match everything.
type ApplicationFilter struct {
	TrainerID  *uuid.UUID
	TrainingID *uuid.UUID
	Status     model.ApplicationStatus
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *model.TrainingApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.TrainingApplication, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.TrainingApplication, error)
	ExistsFor(ctx context.Context, trainerID, trainingID uuid.UUID) (bool, error)
	List(ctx context.Context, filter ApplicationFilter, page, limit int) ([]model.TrainingApplication, int64, error)
	Update(ctx context.Context, app *model.TrainingApplication) error
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *model.TrainingApplication) error {
	return GetDB(ctx, r.db).Omit("Training", "Trainer").Create(app).Error
}

func (r *applicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TrainingApplication, error) {
	var app model.TrainingApplication
	if err := GetDB(ctx, r.db).
		Preload("Training").
		Preload("Trainer").
		First(&app, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (r *applicationRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.TrainingApplication, error) {
	var app model.TrainingApplication
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Training").
		First(&app, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// ExistsFor reports whether trainerID already applied to trainingID, in any status.
func (r *applicationRepository) ExistsFor(ctx context.Context, trainerID, trainingID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.TrainingApplication{}).
		Where("trainer_id = ? AND training_id = ?", trainerID, trainingID).
		Count(&count).Error
	return count > 0, err
}

func (r *applicationRepository) List(ctx context.Context, filter ApplicationFilter, page, limit int) ([]model.TrainingApplication, int64, error) {
	var apps []model.TrainingApplication

	query := GetDB(ctx, r.db).Model(&model.TrainingApplication{})
	if filter.TrainerID != nil {
		query = query.Where("trainer_id = ?", *filter.TrainerID)
	}
	if filter.TrainingID != nil {
		query = query.Where("training_id = ?", *filter.TrainingID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	total, err := paginate(query, &apps, "applied_at desc", page, limit, "Training", "Trainer")
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *applicationRepository) Update(ctx context.Context, app *model.TrainingApplication) error {
	return GetDB(ctx, r.db).Omit("Training", "Trainer").Save(app).Error
}
