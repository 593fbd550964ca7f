package implementation

import (
	"context"
	"time"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/mapper"
	"portfolio-assistant-be/internal/model"
	"portfolio-assistant-be/internal/repository/contract"
	"portfolio-assistant-be/internal/repository/specification"

	"gorm.io/gorm"
)

type QueryLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QueryLogMapper
}

func NewQueryLogRepository(db *gorm.DB) contract.QueryLogRepository {
	return &QueryLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewQueryLogMapper(),
	}
}

func (r *QueryLogRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QueryLogRepositoryImpl) Create(ctx context.Context, queryLog *entity.QueryLog) error {
	m := r.mapper.ToModel(queryLog)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*queryLog = *r.mapper.ToEntity(m)
	return nil
}

func (r *QueryLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QueryLog, error) {
	var models []*model.QueryLog
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *QueryLogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.QueryLog{}).Count(&count).Error
	return count, err
}

func (r *QueryLogRepositoryImpl) PopularQueries(ctx context.Context, limit int) ([]contract.PopularQuery, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []contract.PopularQuery
	err := r.db.WithContext(ctx).
		Model(&model.QueryLog{}).
		Select("query, COUNT(*) as count").
		Group("query").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *QueryLogRepositoryImpl) ModeDistribution(ctx context.Context) ([]contract.ModeCount, error) {
	var rows []contract.ModeCount
	err := r.db.WithContext(ctx).
		Model(&model.QueryLog{}).
		Select("mode, COUNT(*) as count").
		Group("mode").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// QualityMetricsSince aggregates judge averages over the window. The
// average_score lives inside the judge_score JSONB column, so it is
// extracted and cast in SQL rather than unmarshalled row by row.
func (r *QueryLogRepositoryImpl) QualityMetricsSince(ctx context.Context, since time.Time) (*contract.QualityMetrics, error) {
	var row struct {
		TotalQueries  int64
		JudgedQueries int64
		AverageScore  *float64
		AvgResponseMs *float64
	}
	err := r.db.WithContext(ctx).
		Model(&model.QueryLog{}).
		Select(`COUNT(*) as total_queries,
			COUNT(judge_score) as judged_queries,
			AVG((judge_score->>'average_score')::float) as average_score,
			AVG(response_time_ms) as avg_response_ms`).
		Where("created_at >= ?", since).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	metrics := &contract.QualityMetrics{
		TotalQueries:  row.TotalQueries,
		JudgedQueries: row.JudgedQueries,
	}
	if row.AverageScore != nil {
		metrics.AverageScore = *row.AverageScore
	}
	if row.AvgResponseMs != nil {
		metrics.AvgResponseMs = *row.AvgResponseMs
	}
	return metrics, nil
}
