package dedup

import (
	"portfolio-assistant-be/pkg/rag/tfidf"
	"portfolio-assistant-be/pkg/store"
)

const DefaultThreshold = 0.80

// Deduplicator removes near-duplicate chunks by lexical similarity.
// The pass is greedy and order-preserving: the first occurrence of any
// duplicate group survives.
type Deduplicator struct {
	vectorizer *tfidf.Vectorizer
	threshold  float64
}

func NewDeduplicator(threshold float64) *Deduplicator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Deduplicator{
		vectorizer: tfidf.NewVectorizer(),
		threshold:  threshold,
	}
}

// Deduplicate returns the kept chunks in input order. If vectorization
// fails the input is returned unchanged along with the error, so the
// caller can record a degraded stage instead of losing candidates.
func (d *Deduplicator) Deduplicate(chunks []store.Chunk) ([]store.Chunk, error) {
	if len(chunks) <= 1 {
		return chunks, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := d.vectorizer.Vectorize(texts)
	if err != nil {
		return chunks, err
	}

	kept := []int{0}
	for i := 1; i < len(chunks); i++ {
		maxSim := 0.0
		for _, j := range kept {
			if sim := tfidf.Cosine(vectors[i], vectors[j]); sim > maxSim {
				maxSim = sim
			}
		}
		if maxSim < d.threshold {
			kept = append(kept, i)
		}
	}

	out := make([]store.Chunk, len(kept))
	for i, idx := range kept {
		out[i] = chunks[idx]
	}
	return out, nil
}
