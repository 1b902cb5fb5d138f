package repository

import (
	"context"

	"trainingdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RateRepository holds the rate table and the trainer level assignments that point into it.
type RateRepository interface {
	RateFor(ctx context.Context, level string) (*model.PaymentRate, error)
	ListRates(ctx context.Context) ([]model.PaymentRate, error)
	CreateRate(ctx context.Context, rate *model.PaymentRate) error
	UpdateRate(ctx context.Context, rate *model.PaymentRate) error

	LevelFor(ctx context.Context, trainerID uuid.UUID) (*model.TrainerLevel, error)
	ListLevels(ctx context.Context, page, limit int) ([]model.TrainerLevel, int64, error)
	AssignLevel(ctx context.Context, assignment *model.TrainerLevel) error
	UpdateLevel(ctx context.Context, assignment *model.TrainerLevel) error
}

type rateRepository struct {
	db *gorm.DB
}

func NewRateRepository(db *gorm.DB) RateRepository {
	return &rateRepository{db: db}
}

func (r *rateRepository) RateFor(ctx context.Context, level string) (*model.PaymentRate, error) {
	var rate model.PaymentRate
	if err := GetDB(ctx, r.db).First(&rate, "level = ?", level).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *rateRepository) ListRates(ctx context.Context) ([]model.PaymentRate, error) {
	var rates []model.PaymentRate
	if err := GetDB(ctx, r.db).Order("level").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *rateRepository) CreateRate(ctx context.Context, rate *model.PaymentRate) error {
	return GetDB(ctx, r.db).Create(rate).Error
}

func (r *rateRepository) UpdateRate(ctx context.Context, rate *model.PaymentRate) error {
	return GetDB(ctx, r.db).Model(&model.PaymentRate{}).
		Where("level = ?", rate.Level).
		Update("per_day", rate.PerDay).Error
}

func (r *rateRepository) LevelFor(ctx context.Context, trainerID uuid.UUID) (*model.TrainerLevel, error) {
	var assignment model.TrainerLevel
	if err := GetDB(ctx, r.db).First(&assignment, "trainer_id = ?", trainerID).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *rateRepository) ListLevels(ctx context.Context, page, limit int) ([]model.TrainerLevel, int64, error) {
	var levels []model.TrainerLevel
	total, err := paginate(GetDB(ctx, r.db).Model(&model.TrainerLevel{}), &levels, "level", page, limit, "Trainer")
	if err != nil {
		return nil, 0, err
	}
	return levels, total, nil
}

func (r *rateRepository) AssignLevel(ctx context.Context, assignment *model.TrainerLevel) error {
	return GetDB(ctx, r.db).Omit("Trainer").Create(assignment).Error
}

func (r *rateRepository) UpdateLevel(ctx context.Context, assignment *model.TrainerLevel) error {
	return GetDB(ctx, r.db).Model(&model.TrainerLevel{}).
		Where("trainer_id = ?", assignment.TrainerID).
		Update("level", assignment.Level).Error
}
