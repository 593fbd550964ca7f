package store

// SourceUnknown is the provenance label attached to chunks whose
// originating project could not be determined from store metadata.
const SourceUnknown = "unknown"

// Chunk is a retrieved unit of portfolio text flowing through the
// retrieval pipeline. Instances are owned by a single request and are
// never shared across requests or persisted.
type Chunk struct {
	ID         string
	Content    string
	Source     string
	Embedding  []float32
	Similarity float64
}

// Sources returns the unique source labels of the given chunks,
// preserving first-seen order.
func Sources(chunks []Chunk) []string {
	seen := make(map[string]bool, len(chunks))
	var out []string
	for _, c := range chunks {
		if seen[c.Source] {
			continue
		}
		seen[c.Source] = true
		out = append(out, c.Source)
	}
	return out
}
