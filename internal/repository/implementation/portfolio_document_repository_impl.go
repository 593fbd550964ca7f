package implementation

import (
	"context"
	"errors"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/mapper"
	"portfolio-assistant-be/internal/model"
	"portfolio-assistant-be/internal/repository/contract"
	"portfolio-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PortfolioDocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PortfolioDocumentMapper
}

func NewPortfolioDocumentRepository(db *gorm.DB) contract.PortfolioDocumentRepository {
	return &PortfolioDocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewPortfolioDocumentMapper(),
	}
}

func (r *PortfolioDocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PortfolioDocumentRepositoryImpl) Create(ctx context.Context, document *entity.PortfolioDocument) error {
	m := r.mapper.ToModel(document)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*document = *r.mapper.ToEntity(m)
	return nil
}

func (r *PortfolioDocumentRepositoryImpl) Update(ctx context.Context, document *entity.PortfolioDocument) error {
	m := r.mapper.ToModel(document)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*document = *r.mapper.ToEntity(m)
	return nil
}

func (r *PortfolioDocumentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PortfolioDocument{}, id).Error
}

func (r *PortfolioDocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PortfolioDocument, error) {
	var m model.PortfolioDocument
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PortfolioDocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PortfolioDocument, error) {
	var models []*model.PortfolioDocument
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.PortfolioDocument, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *PortfolioDocumentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.PortfolioDocument{}).Count(&count).Error
	return count, err
}
