package diversity

import (
	"sort"

	"portfolio-assistant-be/pkg/store"
)

// ClusterBySource groups chunks by their source project, preserving
// within-cluster input order. Chunks with an empty source fall into
// the "unknown" cluster.
func ClusterBySource(chunks []store.Chunk) map[string][]store.Chunk {
	clusters := make(map[string][]store.Chunk)
	for _, c := range chunks {
		source := c.Source
		if source == "" {
			source = store.SourceUnknown
		}
		clusters[source] = append(clusters[source], c)
	}
	return clusters
}

// SelectDiverse picks up to target chunks spread across clusters: an
// equal per-cluster quota (at least one) taken in lexicographic cluster
// order, then leftover slots backfilled from clusters that still have
// chunks beyond their quota. When target covers all clusters, every
// non-empty cluster contributes at least one chunk.
func SelectDiverse(clusters map[string][]store.Chunk, target int) []store.Chunk {
	if len(clusters) == 0 || target <= 0 {
		return nil
	}

	sources := make([]string, 0, len(clusters))
	for source := range clusters {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	quota := target / len(clusters)
	if quota < 1 {
		quota = 1
	}

	var selected []store.Chunk
	for _, source := range sources {
		chunks := clusters[source]
		if len(chunks) > quota {
			chunks = chunks[:quota]
		}
		selected = append(selected, chunks...)
	}

	if remaining := target - len(selected); remaining > 0 {
		for _, source := range sources {
			chunks := clusters[source]
			if len(chunks) <= quota {
				continue
			}
			extra := chunks[quota:]
			if len(extra) > remaining {
				extra = extra[:remaining]
			}
			selected = append(selected, extra...)
			remaining -= len(extra)
			if remaining <= 0 {
				break
			}
		}
	}

	if len(selected) > target {
		selected = selected[:target]
	}
	return selected
}
