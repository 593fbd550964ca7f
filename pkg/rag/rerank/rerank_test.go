package rerank

import (
	"errors"
	"testing"

	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/store"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	vec, ok := f.vectors[text]
	if !ok {
		vec = []float32{0, 0, 1}
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

func TestRerankOrdersBySemanticSimilarity(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"caching": {1, 0, 0},
	}}
	r := NewReranker(embedder)

	chunks := []store.Chunk{
		{ID: "far", Content: "unrelated topic", Embedding: []float32{0, 1, 0}},
		{ID: "near", Content: "notes on caching layers", Embedding: []float32{1, 0, 0}},
		{ID: "mid", Content: "partially relevant", Embedding: []float32{0.7, 0.7, 0}},
	}

	out, err := r.Rerank(chunks, "caching", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(out))
	}
	if out[0].ID != "near" {
		t.Errorf("best chunk first: got %s", out[0].ID)
	}
}

func TestRerankLexicalBoost(t *testing.T) {
	// Identical embeddings: only the query-term overlap separates them.
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"vector search latency": {1, 0, 0},
	}}
	r := NewReranker(embedder)

	chunks := []store.Chunk{
		{ID: "no-terms", Content: "completely different wording", Embedding: []float32{1, 0, 0}},
		{ID: "has-terms", Content: "we reduced vector search latency by caching", Embedding: []float32{1, 0, 0}},
		{ID: "filler", Content: "another chunk", Embedding: []float32{0, 1, 0}},
	}

	out, err := r.Rerank(chunks, "vector search latency", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].ID != "has-terms" {
		t.Errorf("term overlap should win the tie, got %s first", out[0].ID)
	}
}

func TestRerankSkipsDimensionMismatch(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"query": {1, 0, 0},
	}}
	r := NewReranker(embedder)

	chunks := []store.Chunk{
		{ID: "bad", Content: "wrong dims", Embedding: []float32{1, 0}},
		{ID: "ok1", Content: "fine", Embedding: []float32{1, 0, 0}},
		{ID: "ok2", Content: "also fine", Embedding: []float32{0.5, 0.5, 0}},
		{ID: "ok3", Content: "fine too", Embedding: []float32{0, 1, 0}},
	}

	out, err := r.Rerank(chunks, "query", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range out {
		if c.ID == "bad" {
			t.Fatal("dimension-mismatched chunk must be skipped")
		}
	}
}

func TestRerankWithinTopKUntouched(t *testing.T) {
	r := NewReranker(&fakeEmbedder{err: errors.New("must not be called")})
	chunks := []store.Chunk{{ID: "a"}, {ID: "b"}}

	out, err := r.Rerank(chunks, "query", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "b" {
		t.Fatalf("inputs within topK must pass through in order")
	}
}

func TestRerankFallbackOnEmbeddingFailure(t *testing.T) {
	r := NewReranker(&fakeEmbedder{err: errors.New("provider down")})
	chunks := []store.Chunk{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}

	out, err := r.Rerank(chunks, "query", 2)
	if err == nil {
		t.Fatal("expected error from failed scoring")
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "b" {
		t.Fatalf("fallback must be the first topK in original order, got %v", out)
	}
}
