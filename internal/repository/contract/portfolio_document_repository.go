package contract

import (
	"context"

	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PortfolioDocumentRepository interface {
	Create(ctx context.Context, document *entity.PortfolioDocument) error
	Update(ctx context.Context, document *entity.PortfolioDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PortfolioDocument, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PortfolioDocument, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
