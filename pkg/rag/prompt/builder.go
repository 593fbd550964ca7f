package prompt

import (
	"fmt"
	"strings"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/pkg/llm"
	"portfolio-assistant-be/pkg/store"
)

// historyWindow bounds how many prior turns accompany a generation
// request.
const historyWindow = 6

// SystemPrompt returns the mode persona; unknown modes fall back to ama.
func SystemPrompt(mode string) string {
	switch mode {
	case store.ModeRecruiter:
		return constant.RecruiterSystemPrompt
	case store.ModeEngineer:
		return constant.EngineerSystemPrompt
	default:
		return constant.AmaSystemPrompt
	}
}

// BuildUserPrompt assembles the grounded user turn: numbered context
// blocks, the question, and (when revising) the judge's feedback.
func BuildUserPrompt(query string, contextChunks []store.Chunk, revisionFeedback []string) string {
	var sb strings.Builder

	sb.WriteString("Context from portfolio:\n")
	for i, chunk := range contextChunks {
		source := chunk.Source
		if source == "" {
			source = "Unknown"
		}
		sb.WriteString(fmt.Sprintf("[Source %d: %s]\n%s\n\n", i+1, source, chunk.Content))
	}

	sb.WriteString("\nUser question: ")
	sb.WriteString(query)

	if len(revisionFeedback) > 0 {
		sb.WriteString("\n\nIMPORTANT - Previous response had issues:\n")
		for _, feedback := range revisionFeedback {
			sb.WriteString("- ")
			sb.WriteString(feedback)
			sb.WriteString("\n")
		}
		sb.WriteString("\nRevise to address these specific concerns.")
	}

	return sb.String()
}

// BuildMessages produces the full chat payload: system persona, a
// bounded window of prior turns, then the grounded user prompt.
func BuildMessages(mode, query string, contextChunks []store.Chunk, history []llm.Message, revisionFeedback []string) []llm.Message {
	start := len(history) - historyWindow
	if start < 0 {
		start = 0
	}
	window := history[start:]

	messages := make([]llm.Message, 0, len(window)+2)
	messages = append(messages, llm.Message{
		Role:    constant.ChatMessageRoleSystem,
		Content: SystemPrompt(mode),
	})
	messages = append(messages, window...)
	messages = append(messages, llm.Message{
		Role:    constant.ChatMessageRoleUser,
		Content: BuildUserPrompt(query, contextChunks, revisionFeedback),
	})
	return messages
}
