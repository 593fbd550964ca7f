package bootstrap

import (
	"log"
	"os"
	"path/filepath"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"portfolio-assistant-be/internal/config"
	"portfolio-assistant-be/internal/controller"
	"portfolio-assistant-be/internal/pkg/logger"
	"portfolio-assistant-be/internal/repository/memory"
	"portfolio-assistant-be/internal/repository/unitofwork"
	"portfolio-assistant-be/internal/service"
	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/llm"
	"portfolio-assistant-be/pkg/llm/factory"
	"portfolio-assistant-be/pkg/rag/contextshift"
	"portfolio-assistant-be/pkg/rag/dedup"
	"portfolio-assistant-be/pkg/rag/executor"
	"portfolio-assistant-be/pkg/rag/judge"
	"portfolio-assistant-be/pkg/rag/mode"
	"portfolio-assistant-be/pkg/rag/rerank"
	"portfolio-assistant-be/pkg/rag/response"
	"portfolio-assistant-be/pkg/rag/retriever"
)

type Container struct {
	// Controllers
	ChatController      controller.IChatController
	SessionController   controller.ISessionController
	IngestController    controller.IIngestController
	AnalyticsController controller.IAnalyticsController
	HealthController    controller.IHealthController

	// Background services (run by main)
	ConsumerService service.IConsumerService

	// Shared facades
	SysLogger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Embedding provider, wrapped so a provider/store dimension drift
	// fails loudly instead of silently corrupting the vector column.
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}
	embeddingProvider = embedding.WithDimensionCheck(embeddingProvider, cfg.Ai.EmbeddingDimension)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.Groq,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// In-memory conversational state
	sessionRepo := memory.NewSessionRepository()

	// Pipeline components share a dedicated trace log so per-stage
	// detail stays out of the main application log.
	pipelineLogger := initPipelineLogger()
	pipeline := buildPipeline(cfg, llmProvider, embeddingProvider, uowFactory, pipelineLogger)
	modeDetector := mode.NewDetector(llmProvider, cfg.Ai.IntentModel, pipelineLogger)

	// Services
	publisherService := service.NewPublisherService(pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Rag, uowFactory, embeddingProvider)
	chatService := service.NewChatService(uowFactory, sessionRepo, pipeline, modeDetector, publisherService, cfg.Rag)
	ingestService := service.NewIngestService(uowFactory, publisherService, cfg.Rag)
	analyticsService := service.NewAnalyticsService(uowFactory)

	return &Container{
		ChatController:      controller.NewChatController(chatService),
		SessionController:   controller.NewSessionController(chatService),
		IngestController:    controller.NewIngestController(ingestService),
		AnalyticsController: controller.NewAnalyticsController(analyticsService),
		HealthController:    controller.NewHealthController(cfg.App.Environment),

		ConsumerService: consumerService,
		SysLogger:       sysLogger,
	}
}

func buildPipeline(
	cfg *config.Config,
	llmProvider llm.LLMProvider,
	embeddingProvider embedding.EmbeddingProvider,
	uowFactory unitofwork.RepositoryFactory,
	pipelineLogger *log.Logger,
) *executor.Executor {
	searcher := newChunkSearcher(uowFactory)

	return executor.NewExecutor(
		retriever.NewRetriever(embeddingProvider, searcher, cfg.Rag.SimilarityThreshold, cfg.Rag.TopK),
		dedup.NewDeduplicator(cfg.Rag.DedupThreshold),
		rerank.NewReranker(embeddingProvider),
		contextshift.NewDecider(llmProvider, embeddingProvider, cfg.Ai.IntentModel, cfg.Rag.TopicShiftThreshold, pipelineLogger),
		response.NewGenerator(llmProvider, pipelineLogger),
		judge.NewJudge(llmProvider, cfg.Ai.LLMModel, pipelineLogger),
		cfg.Rag.TopK,
		cfg.Rag.MaxRevisions,
		pipelineLogger,
	)
}

func initPipelineLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "rag_pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
