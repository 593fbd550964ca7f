package implementation

import (
	"context"
	"errors"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/mapper"
	"portfolio-assistant-be/internal/model"
	"portfolio-assistant-be/internal/repository/contract"
	"portfolio-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type PortfolioChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PortfolioChunkMapper
}

func NewPortfolioChunkRepository(db *gorm.DB) contract.PortfolioChunkRepository {
	return &PortfolioChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewPortfolioChunkMapper(),
	}
}

func (r *PortfolioChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PortfolioChunkRepositoryImpl) Create(ctx context.Context, chunk *entity.PortfolioChunk) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *PortfolioChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.PortfolioChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *PortfolioChunkRepositoryImpl) Update(ctx context.Context, chunk *entity.PortfolioChunk) error {
	m := r.mapper.ToModel(chunk)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *PortfolioChunkRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PortfolioChunk{}, id).Error
}

func (r *PortfolioChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.PortfolioChunk{}).Error
}

func (r *PortfolioChunkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PortfolioChunk, error) {
	var m model.PortfolioChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PortfolioChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PortfolioChunk, error) {
	var models []*model.PortfolioChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *PortfolioChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.PortfolioChunk{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns chunks with similarity scores, filtered by threshold.
// Cosine distance in pgvector is 1 - cosine_similarity, so
// 1 - (embedding_value <=> query_vector) recovers the similarity.
func (r *PortfolioChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*contract.ScoredPortfolioChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.PortfolioChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("portfolio_chunks").
		Select("portfolio_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("portfolio_chunks.deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredPortfolioChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredPortfolioChunk{
			Chunk:      r.mapper.ToEntity(&res.PortfolioChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
