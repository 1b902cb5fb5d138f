package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatusTotal is one row of a per-status aggregate.
type StatusTotal struct {
	Status string          `gorm:"column:status" json:"status"`
	Count  int64           `gorm:"column:count" json:"count"`
	Amount decimal.Decimal `gorm:"column:amount" json:"amount"`
}

// TrainerEarning ranks trainers by what they were paid.
type TrainerEarning struct {
	TrainerID   string          `gorm:"column:trainer_id" json:"trainer_id"`
	Username    string          `gorm:"column:username" json:"username"`
	Payments    int64           `gorm:"column:payments" json:"payments"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount" json:"total_amount"`
	ServiceDays int64           `gorm:"column:service_days" json:"service_days"`
}

type StatisticsRepository interface {
	PaymentTotals(ctx context.Context, start, end time.Time) ([]StatusTotal, error)
	ApplicationCounts(ctx context.Context, start, end time.Time) ([]StatusTotal, error)
	TopTrainers(ctx context.Context, statuses []string, start, end time.Time, limit int) ([]TrainerEarning, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) PaymentTotals(ctx context.Context, start, end time.Time) ([]StatusTotal, error) {
	var rows []StatusTotal
	if err := GetDB(ctx, r.db).Table("payments").
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Where("created_at >= ? AND created_at <= ?", start, end).
		Group("status").
		Order("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query payment totals: %w", err)
	}
	return rows, nil
}

func (r *statisticsRepository) ApplicationCounts(ctx context.Context, start, end time.Time) ([]StatusTotal, error) {
	var rows []StatusTotal
	if err := GetDB(ctx, r.db).Table("training_applications").
		Select("status, COUNT(*) AS count, 0 AS amount").
		Where("applied_at >= ? AND applied_at <= ?", start, end).
		Group("status").
		Order("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query application counts: %w", err)
	}
	return rows, nil
}

func (r *statisticsRepository) TopTrainers(ctx context.Context, statuses []string, start, end time.Time, limit int) ([]TrainerEarning, error) {
	var rows []TrainerEarning
	if err := GetDB(ctx, r.db).Table("payments").
		Select("users.id AS trainer_id, users.username AS username, COUNT(payments.id) AS payments, " +
			"COALESCE(SUM(payments.amount), 0) AS total_amount, COALESCE(SUM(payments.service_days), 0) AS service_days").
		Joins("JOIN users ON users.id = payments.requested_by").
		Where("payments.status IN ? AND payments.created_at >= ? AND payments.created_at <= ?", statuses, start, end).
		Group("users.id, users.username").
		Order("total_amount DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query top trainers: %w", err)
	}
	return rows, nil
}
