package embedding

// Task types accepted by providers that distinguish how a vector will
// be used. Providers that make no distinction ignore them.
const (
	TaskRetrievalQuery     = "RETRIEVAL_QUERY"
	TaskRetrievalDocument  = "RETRIEVAL_DOCUMENT"
	TaskSemanticSimilarity = "SEMANTIC_SIMILARITY"
)

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}

// GenerateBatch embeds each text in order with the given provider. It
// stops at the first failure so callers never receive a partially
// misaligned batch.
func GenerateBatch(provider EmbeddingProvider, texts []string, taskType string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		res, err := provider.Generate(text, taskType)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, res.Embedding.Values)
	}
	return vectors, nil
}
