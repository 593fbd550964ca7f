package retriever

import (
	"context"
	"fmt"

	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/store"
)

// overFetchFactor widens the initial similarity search so the dedup
// and diversity passes have candidates to discard.
const overFetchFactor = 3

// VectorSearcher is the store-side collaborator: a cosine similarity
// search returning chunks at or above the threshold, best first.
type VectorSearcher interface {
	SearchSimilarWithScore(ctx context.Context, queryEmbedding []float32, threshold float64, limit int) ([]store.Chunk, error)
}

// Retriever produces the raw candidate set for one query. Callers must
// treat a returned error as an empty result, not a request failure:
// the pipeline degrades to "no context" rather than erroring out.
type Retriever struct {
	embedder  embedding.EmbeddingProvider
	searcher  VectorSearcher
	threshold float64
	topK      int
}

func NewRetriever(embedder embedding.EmbeddingProvider, searcher VectorSearcher, threshold float64, topK int) *Retriever {
	return &Retriever{
		embedder:  embedder,
		searcher:  searcher,
		threshold: threshold,
		topK:      topK,
	}
}

// Retrieve embeds the query and fetches up to 3×K candidates above the
// similarity threshold. Sources are normalized so every chunk carries
// a non-empty label.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]store.Chunk, error) {
	queryRes, err := r.embedder.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := r.searcher.SearchSimilarWithScore(ctx, queryRes.Embedding.Values, r.threshold, r.topK*overFetchFactor)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	for i := range chunks {
		if chunks[i].Source == "" {
			chunks[i].Source = store.SourceUnknown
		}
	}
	return chunks, nil
}
