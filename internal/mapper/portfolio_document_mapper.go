package mapper

import (
	"time"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/model"

	"gorm.io/gorm"
)

type PortfolioDocumentMapper struct{}

func NewPortfolioDocumentMapper() *PortfolioDocumentMapper {
	return &PortfolioDocumentMapper{}
}

func (m *PortfolioDocumentMapper) ToEntity(e *model.PortfolioDocument) *entity.PortfolioDocument {
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

	return &entity.PortfolioDocument{
		Id:          e.Id,
		Title:       e.Title,
		Source:      e.Source,
		ProjectType: e.ProjectType,
		Content:     e.Content,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   e.DeletedAt.Valid,
	}
}

func (m *PortfolioDocumentMapper) ToModel(e *entity.PortfolioDocument) *model.PortfolioDocument {
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

	return &model.PortfolioDocument{
		Id:          e.Id,
		Title:       e.Title,
		Source:      e.Source,
		ProjectType: e.ProjectType,
		Content:     e.Content,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}
