package bootstrap

import (
	"context"

	"portfolio-assistant-be/internal/repository/unitofwork"
	"portfolio-assistant-be/pkg/store"
)

// chunkSearcher adapts the chunk repository to the retriever's vector
// search interface, flattening scored rows into pipeline chunks.
type chunkSearcher struct {
	uowFactory unitofwork.RepositoryFactory
}

func newChunkSearcher(uowFactory unitofwork.RepositoryFactory) *chunkSearcher {
	return &chunkSearcher{uowFactory: uowFactory}
}

func (s *chunkSearcher) SearchSimilarWithScore(ctx context.Context, queryEmbedding []float32, threshold float64, limit int) ([]store.Chunk, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.PortfolioChunkRepository().SearchSimilarWithScore(ctx, queryEmbedding, threshold, limit)
	if err != nil {
		return nil, err
	}

	chunks := make([]store.Chunk, len(scored))
	for i, row := range scored {
		chunks[i] = store.Chunk{
			ID:         row.Chunk.Id.String(),
			Content:    row.Chunk.Content,
			Source:     sourceLabel(row.Chunk.Metadata, row.Chunk.Source),
			Embedding:  row.Chunk.EmbeddingValue,
			Similarity: row.Similarity,
		}
	}
	return chunks, nil
}

// sourceLabel prefers the document title over the raw source (usually a
// filename) so clustering and citations use the human-readable name.
func sourceLabel(metadata map[string]any, fallback string) string {
	if title, ok := metadata["title"].(string); ok && title != "" {
		return title
	}
	return fallback
}
