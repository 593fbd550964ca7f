package entity

import (
	"time"

	"github.com/google/uuid"
)

type PortfolioChunk struct {
	Id             uuid.UUID
	DocumentId     uuid.UUID
	Content        string
	Source         string
	ChunkIndex     int
	Metadata       map[string]any
	EmbeddingValue []float32
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
