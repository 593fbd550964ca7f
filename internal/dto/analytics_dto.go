package dto

import "portfolio-assistant-be/internal/repository/contract"

type PopularQueriesResponse struct {
	Limit   int                     `json:"limit"`
	Queries []contract.PopularQuery `json:"queries"`
}

type QualityMetricsResponse struct {
	PeriodHours   int     `json:"period_hours"`
	TotalQueries  int64   `json:"total_queries"`
	JudgedQueries int64   `json:"judged_queries"`
	AverageScore  float64 `json:"average_quality_score"`
	AvgResponseMs float64 `json:"avg_response_time_ms"`
}

type ModeDistributionResponse struct {
	Modes []contract.ModeCount `json:"modes"`
}

type DashboardResponse struct {
	PopularQueries   []contract.PopularQuery `json:"popular_queries"`
	ModeDistribution []contract.ModeCount    `json:"mode_distribution"`
	Quality          QualityMetricsResponse  `json:"quality"`
}
