package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"portfolio-assistant-be/internal/config"
	"portfolio-assistant-be/internal/dto"
	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/repository/unitofwork"
	"portfolio-assistant-be/pkg/utils"
)

type IIngestService interface {
	Ingest(ctx context.Context, request *dto.IngestRequest) (*dto.IngestResponse, error)
}

type ingestService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	ragConfig  config.RagConfig
}

func NewIngestService(
	uowFactory unitofwork.RepositoryFactory,
	publisher IPublisherService,
	ragConfig config.RagConfig,
) IIngestService {
	return &ingestService{
		uowFactory: uowFactory,
		publisher:  publisher,
		ragConfig:  ragConfig,
	}
}

// Ingest stores the document and hands embedding off to the background
// consumer. The returned chunk count reflects the split performed here,
// the consumer performs the same split when it embeds.
func (is *ingestService) Ingest(ctx context.Context, request *dto.IngestRequest) (*dto.IngestResponse, error) {
	uow := is.uowFactory.NewUnitOfWork(ctx)

	projectType := request.ProjectType
	if projectType == "" {
		projectType = "project"
	}

	document := entity.PortfolioDocument{
		Id:          uuid.New(),
		Title:       request.Title,
		Source:      request.Source,
		ProjectType: projectType,
		Content:     request.Content,
		CreatedAt:   time.Now(),
	}
	if err := uow.PortfolioDocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}

	chunks := utils.SplitText(request.Content, is.ragConfig.ChunkSize, is.ragConfig.ChunkOverlap)

	payload, err := json.Marshal(dto.EmbedDocumentMessage{DocumentId: document.Id})
	if err != nil {
		return nil, err
	}
	if err := is.publisher.Publish(ctx, is.ragConfig.EmbedChunkTopic, payload); err != nil {
		return nil, err
	}

	return &dto.IngestResponse{
		Success:       true,
		DocumentId:    document.Id,
		ChunksCreated: len(chunks),
	}, nil
}
