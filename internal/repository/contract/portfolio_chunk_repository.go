package contract

import (
	"context"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredPortfolioChunk wraps PortfolioChunk with its similarity score
type ScoredPortfolioChunk struct {
	Chunk      *entity.PortfolioChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type PortfolioChunkRepository interface {
	Create(ctx context.Context, chunk *entity.PortfolioChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.PortfolioChunk) error
	Update(ctx context.Context, chunk *entity.PortfolioChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PortfolioChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PortfolioChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns chunks with cosine similarity at or
	// above threshold, best match first.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*ScoredPortfolioChunk, error)
}
