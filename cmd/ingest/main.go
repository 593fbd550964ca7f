package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"portfolio-assistant-be/internal/config"
	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/repository/unitofwork"
	"portfolio-assistant-be/pkg/database"
	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/utils"
)

// Loads every markdown file in a directory into the portfolio store,
// embedding chunks synchronously. Meant for initial seeding; the REST
// ingest endpoint handles incremental updates.
func main() {
	dir := flag.String("dir", "data/portfolio", "directory of markdown files to ingest")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewGormDB(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	uowFactory := unitofwork.NewRepositoryFactory(db)

	var provider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		provider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}
	provider = embedding.WithDimensionCheck(provider, cfg.Ai.EmbeddingDimension)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Failed to read portfolio directory %s: %v", *dir, err)
	}

	ctx := context.Background()
	success, failed := 0, 0

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(*dir, e.Name()))
		if err != nil {
			log.Printf("❌ %s: %v", e.Name(), err)
			failed++
			continue
		}

		title := strings.TrimSuffix(e.Name(), ".md")
		if err := ingestFile(ctx, uowFactory, provider, cfg, title, e.Name(), string(raw)); err != nil {
			log.Printf("❌ %s: %v", e.Name(), err)
			failed++
			continue
		}
		log.Printf("✅ %s", title)
		success++
	}

	log.Printf("Done: %d ingested, %d failed", success, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func ingestFile(
	ctx context.Context,
	uowFactory unitofwork.RepositoryFactory,
	provider embedding.EmbeddingProvider,
	cfg *config.Config,
	title, source, content string,
) error {
	uow := uowFactory.NewUnitOfWork(ctx)

	document := entity.PortfolioDocument{
		Id:          uuid.New(),
		Title:       title,
		Source:      source,
		ProjectType: "project",
		Content:     content,
		CreatedAt:   time.Now(),
	}

	chunks := utils.SplitText(content, cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap)
	chunkEntities := make([]*entity.PortfolioChunk, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := provider.Generate(chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			return err
		}
		chunkEntities = append(chunkEntities, &entity.PortfolioChunk{
			Id:             uuid.New(),
			DocumentId:     document.Id,
			Content:        chunk,
			Source:         document.Source,
			ChunkIndex:     i,
			Metadata:       map[string]any{"title": title, "project_type": "project"},
			EmbeddingValue: res.Embedding.Values,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.PortfolioDocumentRepository().Create(ctx, &document); err != nil {
		return err
	}
	if err := uow.PortfolioChunkRepository().CreateBulk(ctx, chunkEntities); err != nil {
		return err
	}
	return uow.Commit()
}
