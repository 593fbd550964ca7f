package service

import (
	"context"
	"time"

	"portfolio-assistant-be/internal/dto"
	"portfolio-assistant-be/internal/repository/unitofwork"
)

type IAnalyticsService interface {
	PopularQueries(ctx context.Context, limit int) (*dto.PopularQueriesResponse, error)
	QualityMetrics(ctx context.Context, hours int) (*dto.QualityMetricsResponse, error)
	ModeDistribution(ctx context.Context) (*dto.ModeDistributionResponse, error)
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
}

type analyticsService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewAnalyticsService(uowFactory unitofwork.RepositoryFactory) IAnalyticsService {
	return &analyticsService{
		uowFactory: uowFactory,
	}
}

func (as *analyticsService) PopularQueries(ctx context.Context, limit int) (*dto.PopularQueriesResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	uow := as.uowFactory.NewUnitOfWork(ctx)
	queries, err := uow.QueryLogRepository().PopularQueries(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &dto.PopularQueriesResponse{
		Limit:   limit,
		Queries: queries,
	}, nil
}

func (as *analyticsService) QualityMetrics(ctx context.Context, hours int) (*dto.QualityMetricsResponse, error) {
	if hours <= 0 {
		hours = 24
	}
	uow := as.uowFactory.NewUnitOfWork(ctx)
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	metrics, err := uow.QueryLogRepository().QualityMetricsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	return &dto.QualityMetricsResponse{
		PeriodHours:   hours,
		TotalQueries:  metrics.TotalQueries,
		JudgedQueries: metrics.JudgedQueries,
		AverageScore:  metrics.AverageScore,
		AvgResponseMs: metrics.AvgResponseMs,
	}, nil
}

func (as *analyticsService) ModeDistribution(ctx context.Context) (*dto.ModeDistributionResponse, error) {
	uow := as.uowFactory.NewUnitOfWork(ctx)
	modes, err := uow.QueryLogRepository().ModeDistribution(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ModeDistributionResponse{Modes: modes}, nil
}

func (as *analyticsService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	popular, err := as.PopularQueries(ctx, 10)
	if err != nil {
		return nil, err
	}
	quality, err := as.QualityMetrics(ctx, 24)
	if err != nil {
		return nil, err
	}
	modes, err := as.ModeDistribution(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardResponse{
		PopularQueries:   popular.Queries,
		ModeDistribution: modes.Modes,
		Quality:          *quality,
	}, nil
}
