package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"portfolio-assistant-be/internal/config"
	"portfolio-assistant-be/internal/dto"
	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/repository/specification"
	"portfolio-assistant-be/internal/repository/unitofwork"
	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/utils"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	ragConfig         config.RagConfig
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	ragConfig config.RagConfig,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		ragConfig:         ragConfig,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

// Consume subscribes both background topics and processes messages
// until the context is cancelled.
func (cs *consumerService) Consume(ctx context.Context) error {
	embedMessages, err := cs.pubSub.Subscribe(ctx, cs.ragConfig.EmbedChunkTopic)
	if err != nil {
		return err
	}
	logMessages, err := cs.pubSub.Subscribe(ctx, cs.ragConfig.QueryLogTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range embedMessages {
			cs.processEmbedDocument(ctx, msg)
		}
	}()
	go func() {
		for msg := range logMessages {
			cs.processQueryLog(ctx, msg)
		}
	}()

	return nil
}

// processEmbedDocument rebuilds the chunk rows for one document: split,
// embed every chunk, then swap the old rows for the new set in a single
// transaction. Malformed payloads are Acked to avoid an infinite retry
// loop; transient failures are Nacked.
func (cs *consumerService) processEmbedDocument(ctx context.Context, msg *message.Message) {
	var payload dto.EmbedDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal embed message: %v", err)
		msg.Ack()
		return
	}

	log.Printf("[INFO] Embedding portfolio document %s", payload.DocumentId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.PortfolioDocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		log.Printf("[ERROR] Failed to load document %s: %v", payload.DocumentId, err)
		msg.Nack()
		return
	}
	if doc == nil {
		log.Printf("[WARN] Document %s no longer exists, skipping", payload.DocumentId)
		msg.Ack()
		return
	}

	chunks := utils.SplitText(doc.Content, cs.ragConfig.ChunkSize, cs.ragConfig.ChunkOverlap)
	log.Printf("[INFO] Document %s split into %d chunks", doc.Id, len(chunks))

	newChunks := make([]*entity.PortfolioChunk, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of document %s: %v", i, doc.Id, err)
			msg.Nack()
			return
		}

		newChunks = append(newChunks, &entity.PortfolioChunk{
			Id:             uuid.New(),
			DocumentId:     doc.Id,
			Content:        chunk,
			Source:         doc.Source,
			ChunkIndex:     i,
			Metadata:       map[string]any{"title": doc.Title, "project_type": doc.ProjectType},
			EmbeddingValue: res.Embedding.Values,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.PortfolioChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old chunks for document %s: %v", doc.Id, err)
		msg.Nack()
		return
	}
	if len(newChunks) > 0 {
		if err := uow.PortfolioChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			log.Printf("[ERROR] Failed to insert chunks for document %s: %v", doc.Id, err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit chunk swap: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Document %s embedded: %d chunks", doc.Id, len(newChunks))
	msg.Ack()
}

func (cs *consumerService) processQueryLog(ctx context.Context, msg *message.Message) {
	var payload dto.QueryLogMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal query log message: %v", err)
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	entry := &entity.QueryLog{
		Id:             uuid.New(),
		SessionId:      payload.SessionId,
		Query:          payload.Query,
		Mode:           payload.Mode,
		JudgeScore:     payload.JudgeScore,
		Sources:        payload.Sources,
		ResponseTimeMs: payload.ResponseTimeMs,
		CreatedAt:      time.Now(),
	}
	if err := uow.QueryLogRepository().Create(ctx, entry); err != nil {
		log.Printf("[ERROR] Failed to persist query log: %v", err)
		msg.Nack()
		return
	}
	msg.Ack()
}
