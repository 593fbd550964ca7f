package mapper

import (
	"encoding/json"
	"time"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PortfolioChunkMapper struct{}

func NewPortfolioChunkMapper() *PortfolioChunkMapper {
	return &PortfolioChunkMapper{}
}

func (m *PortfolioChunkMapper) ToEntity(e *model.PortfolioChunk) *entity.PortfolioChunk {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	var metadata map[string]any
	if len(e.Metadata) > 0 {
		// Best effort; a chunk with broken metadata is still usable.
		_ = json.Unmarshal(e.Metadata, &metadata)
	}

	return &entity.PortfolioChunk{
		Id:             e.Id,
		DocumentId:     e.DocumentId,
		Content:        e.Content,
		Source:         e.Source,
		ChunkIndex:     e.ChunkIndex,
		Metadata:       metadata,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      e.DeletedAt.Valid,
	}
}

func (m *PortfolioChunkMapper) ToModel(e *entity.PortfolioChunk) *model.PortfolioChunk {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	var metadata datatypes.JSON
	if e.Metadata != nil {
		raw, err := json.Marshal(e.Metadata)
		if err == nil {
			metadata = raw
		}
	}

	return &model.PortfolioChunk{
		Id:             e.Id,
		DocumentId:     e.DocumentId,
		Content:        e.Content,
		Source:         e.Source,
		ChunkIndex:     e.ChunkIndex,
		Metadata:       metadata,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *PortfolioChunkMapper) ToEntities(chunks []*model.PortfolioChunk) []*entity.PortfolioChunk {
	entities := make([]*entity.PortfolioChunk, len(chunks))
	for i, e := range chunks {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *PortfolioChunkMapper) ToModels(chunks []*entity.PortfolioChunk) []*model.PortfolioChunk {
	models := make([]*model.PortfolioChunk, len(chunks))
	for i, e := range chunks {
		models[i] = m.ToModel(e)
	}
	return models
}
