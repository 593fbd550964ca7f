package tfidf

import (
	"math"
	"testing"
)

func TestVectorizeProducesUnitVectors(t *testing.T) {
	v := NewVectorizer()
	vectors, err := v.Vectorize([]string{
		"distributed task queue in go",
		"capsule network for taxonomy classification",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	for i, vec := range vectors {
		norm := 0.0
		for _, x := range vec {
			norm += x * x
		}
		if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
			t.Errorf("vector %d norm = %f, want 1", i, math.Sqrt(norm))
		}
	}
}

func TestVectorizeIdenticalTextsAreIdentical(t *testing.T) {
	v := NewVectorizer()
	text := "event driven ingestion pipeline with vector search"
	vectors, err := v.Vectorize([]string{text, text, "something else entirely unrelated"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sim := Cosine(vectors[0], vectors[1]); math.Abs(sim-1.0) > 1e-9 {
		t.Errorf("identical texts similarity = %f, want 1", sim)
	}
	if sim := Cosine(vectors[0], vectors[2]); sim > 0.5 {
		t.Errorf("unrelated texts similarity = %f, want low", sim)
	}
}

func TestVectorizeStopwordOnlyText(t *testing.T) {
	v := NewVectorizer()
	vectors, err := v.Vectorize([]string{"the and of", "capsule network taxonomy"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, x := range vectors[0] {
		if x != 0 {
			t.Fatalf("stopword-only text should map to zero vector")
		}
	}
}

func TestVectorizeEmptyCorpus(t *testing.T) {
	v := NewVectorizer()
	if _, err := v.Vectorize(nil); err == nil {
		t.Fatal("expected error for empty corpus")
	}
}

func TestCosineMismatchedLengths(t *testing.T) {
	if got := Cosine([]float64{1, 0}, []float64{1}); got != 0 {
		t.Errorf("mismatched lengths cosine = %f, want 0", got)
	}
}
