package contract

import (
	"context"
	"time"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/repository/specification"
)

// PopularQuery is one aggregated query row for the analytics read side.
type PopularQuery struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// ModeCount is the number of queries answered in one mode.
type ModeCount struct {
	Mode  string `json:"mode"`
	Count int64  `json:"count"`
}

// QualityMetrics aggregates judge scores over a time window.
type QualityMetrics struct {
	TotalQueries  int64   `json:"total_queries"`
	JudgedQueries int64   `json:"judged_queries"`
	AverageScore  float64 `json:"average_score"`
	AvgResponseMs float64 `json:"avg_response_time_ms"`
}

type QueryLogRepository interface {
	Create(ctx context.Context, log *entity.QueryLog) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QueryLog, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// Aggregations
	PopularQueries(ctx context.Context, limit int) ([]PopularQuery, error)
	ModeDistribution(ctx context.Context) ([]ModeCount, error)
	QualityMetricsSince(ctx context.Context, since time.Time) (*QualityMetrics, error)
}
