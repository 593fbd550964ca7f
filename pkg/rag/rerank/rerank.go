package rerank

import (
	"fmt"
	"sort"
	"strings"

	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/store"
)

const (
	semanticWeight = 0.7
	lexicalWeight  = 0.3
)

// Reranker orders chunks by a combined semantic + lexical relevance
// score against the query.
type Reranker struct {
	embedder embedding.EmbeddingProvider
}

func NewReranker(embedder embedding.EmbeddingProvider) *Reranker {
	return &Reranker{embedder: embedder}
}

// Rerank returns the topK highest-scoring chunks in descending score
// order. Inputs already within topK are returned untouched. Chunks
// whose embedding dimensionality disagrees with the query's are
// skipped. On scoring failure the first topK chunks are returned in
// their original order along with the error.
func (r *Reranker) Rerank(chunks []store.Chunk, query string, topK int) ([]store.Chunk, error) {
	if len(chunks) <= topK {
		return chunks, nil
	}

	queryRes, err := r.embedder.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return chunks[:topK], fmt.Errorf("embed query: %w", err)
	}
	queryEmb := queryRes.Embedding.Values

	queryTerms := uniqueTerms(query)

	type scored struct {
		chunk store.Chunk
		score float64
	}
	scores := make([]scored, 0, len(chunks))
	for _, chunk := range chunks {
		chunkEmb := chunk.Embedding
		if len(chunkEmb) == 0 {
			res, err := r.embedder.Generate(chunk.Content, embedding.TaskRetrievalDocument)
			if err != nil {
				return chunks[:topK], fmt.Errorf("embed chunk %s: %w", chunk.ID, err)
			}
			chunkEmb = res.Embedding.Values
		}

		if len(chunkEmb) != len(queryEmb) {
			continue
		}

		similarity := embedding.CosineSimilarity(queryEmb, chunkEmb)
		overlap := termOverlap(queryTerms, chunk.Content)
		scores = append(scores, scored{
			chunk: chunk,
			score: semanticWeight*similarity + lexicalWeight*overlap,
		})
	}

	// Stable so equal-score chunks keep their input order.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if len(scores) > topK {
		scores = scores[:topK]
	}
	out := make([]store.Chunk, len(scores))
	for i, s := range scores {
		out[i] = s.chunk
	}
	return out, nil
}

// termOverlap is the fraction of distinct query terms contained in the
// chunk text (substring match, case-insensitive).
func termOverlap(queryTerms []string, content string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	text := strings.ToLower(content)
	matched := 0
	for _, term := range queryTerms {
		if strings.Contains(text, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTerms))
}

func uniqueTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	seen := make(map[string]struct{}, len(fields))
	var out []string
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
