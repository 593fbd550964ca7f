package embedding

import "fmt"

// dimensionChecked wraps a provider and rejects vectors whose length
// differs from the configured store dimensionality. A silent mismatch
// would corrupt every similarity comparison downstream, so this fails
// loudly instead.
type dimensionChecked struct {
	inner EmbeddingProvider
	dim   int
}

func WithDimensionCheck(inner EmbeddingProvider, dim int) EmbeddingProvider {
	return &dimensionChecked{inner: inner, dim: dim}
}

func (d *dimensionChecked) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	res, err := d.inner.Generate(text, taskType)
	if err != nil {
		return nil, err
	}
	if got := len(res.Embedding.Values); got != d.dim {
		return nil, fmt.Errorf("embedding dimension mismatch: provider returned %d, store expects %d", got, d.dim)
	}
	return res, nil
}
