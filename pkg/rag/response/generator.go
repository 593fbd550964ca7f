package response

import (
	"context"
	"log"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/pkg/llm"
	"portfolio-assistant-be/pkg/rag/prompt"
	"portfolio-assistant-be/pkg/store"
)

// Settings are the per-mode sampling parameters.
type Settings struct {
	Temperature float64
	MaxTokens   int
}

// ModeSettings returns the generation parameters for a mode: exploratory
// answers run hotter, recruiter answers run short.
func ModeSettings(mode string) Settings {
	switch mode {
	case store.ModeRecruiter:
		return Settings{Temperature: 0.3, MaxTokens: 400}
	case store.ModeEngineer:
		return Settings{Temperature: 0.3, MaxTokens: 800}
	default:
		return Settings{Temperature: 0.7, MaxTokens: 800}
	}
}

// Generator produces mode-tailored grounded answers.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewGenerator(llmProvider llm.LLMProvider, logger *log.Logger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Generate returns the full answer text. On model failure the fixed
// apology is returned together with the error, so callers can surface
// the apology while recording the degradation.
func (g *Generator) Generate(
	ctx context.Context,
	query, mode string,
	contextChunks []store.Chunk,
	history []llm.Message,
	revisionFeedback []string,
) (string, error) {
	messages := prompt.BuildMessages(mode, query, contextChunks, history, revisionFeedback)
	settings := ModeSettings(mode)

	text, err := g.llmProvider.Chat(ctx, messages,
		llm.WithTemperature(settings.Temperature),
		llm.WithMaxTokens(settings.MaxTokens))
	if err != nil {
		g.logger.Printf("[ERROR] Response generation failed: %v", err)
		return constant.GenerationFailureMessage, err
	}

	g.logger.Printf("[GENERATION] %s mode, %d chars", mode, len(text))
	return text, nil
}

// GenerateStream yields the answer incrementally with the same prompt
// and sampling parameters as Generate.
func (g *Generator) GenerateStream(
	ctx context.Context,
	query, mode string,
	contextChunks []store.Chunk,
	history []llm.Message,
) (<-chan llm.StreamChunk, error) {
	messages := prompt.BuildMessages(mode, query, contextChunks, history, nil)
	settings := ModeSettings(mode)

	return g.llmProvider.ChatStream(ctx, messages,
		llm.WithTemperature(settings.Temperature),
		llm.WithMaxTokens(settings.MaxTokens))
}
