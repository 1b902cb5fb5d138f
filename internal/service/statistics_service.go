package service

import (
	"context"
	"time"

	"trainingdesk/internal/model"
	"trainingdesk/internal/rbac"
	"trainingdesk/internal/repository"

	"github.com/shopspring/decimal"
)

// StatisticsResponse is the dashboard summary of one time range.
type StatisticsResponse struct {
	TimeRangeStartDate time.Time                   `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time                   `json:"time_range_end_date"`
	Payments           []repository.StatusTotal    `json:"payments"`
	Applications       []repository.StatusTotal    `json:"applications"`
	TotalPaid          decimal.Decimal             `json:"total_paid"`
	TotalOutstanding   decimal.Decimal             `json:"total_outstanding"`
	TopTrainers        []repository.TrainerEarning `json:"top_trainers"`
}

type StatisticsService interface {
	GetStatistics(ctx context.Context, actor rbac.Actor, startDate, endDate time.Time) (StatisticsResponse, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
}

func NewStatisticsService(repo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{repo: repo}
}

// GetStatistics aggregates payments and applications created inside [startDate, endDate].
// Paid means completed; outstanding means approved but not yet paid out.
func (s *statisticsService) GetStatistics(ctx context.Context, actor rbac.Actor, startDate, endDate time.Time) (StatisticsResponse, error) {
	if err := rbac.Authorize(actor, rbac.StatisticsRead); err != nil {
		return StatisticsResponse{}, err
	}

	response := StatisticsResponse{
		TimeRangeStartDate: startDate,
		TimeRangeEndDate:   endDate,
		TotalPaid:          decimal.Zero,
		TotalOutstanding:   decimal.Zero,
	}

	var err error
	if response.Payments, err = s.repo.PaymentTotals(ctx, startDate, endDate); err != nil {
		return StatisticsResponse{}, err
	}
	for _, row := range response.Payments {
		switch model.PaymentStatus(row.Status) {
		case model.PaymentCompleted:
			response.TotalPaid = response.TotalPaid.Add(row.Amount)
		case model.PaymentApproved:
			response.TotalOutstanding = response.TotalOutstanding.Add(row.Amount)
		}
	}

	if response.Applications, err = s.repo.ApplicationCounts(ctx, startDate, endDate); err != nil {
		return StatisticsResponse{}, err
	}

	earning := []string{string(model.PaymentApproved), string(model.PaymentCompleted)}
	if response.TopTrainers, err = s.repo.TopTrainers(ctx, earning, startDate, endDate, 5); err != nil {
		return StatisticsResponse{}, err
	}
	return response, nil
}
