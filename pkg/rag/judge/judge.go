package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/pkg/llm"
	"portfolio-assistant-be/pkg/store"
)

// rejectThreshold: an average below this rejects the response outright
// regardless of the model's own reject flag.
const rejectThreshold = 4.0

// Score is the rubric evaluation of one generated response. Sub-scores
// run 0-10.
type Score struct {
	GroundingScore   float64  `json:"grounding_score"`
	ConsistencyScore float64  `json:"consistency_score"`
	DepthScore       float64  `json:"depth_score"`
	SpecificityScore float64  `json:"specificity_score"`
	AverageScore     float64  `json:"average_score"`
	RevisionRequired bool     `json:"revision_required"`
	Reject           bool     `json:"reject"`
	Feedback         []string `json:"feedback"`
	Strengths        []string `json:"strengths"`
	CitationsUsed    []string `json:"citations_used"`
}

// ShouldRevise reports whether the response deserves another
// generation attempt. Rejection always wins over revision.
func (s *Score) ShouldRevise() bool {
	return s.RevisionRequired && !s.Reject
}

// ShouldReject reports whether the response must not be shown to the
// user.
func (s *Score) ShouldReject() bool {
	return s.Reject || s.AverageScore < rejectThreshold
}

// Judge scores responses against the grounding rubric with a single
// LLM call per evaluation.
type Judge struct {
	llmProvider llm.LLMProvider
	model       string
	logger      *log.Logger
}

func NewJudge(llmProvider llm.LLMProvider, model string, logger *log.Logger) *Judge {
	return &Judge{
		llmProvider: llmProvider,
		model:       model,
		logger:      logger,
	}
}

// Evaluate scores a response against its retrieval context. It never
// fails: any call or parse error yields the pessimistic default, which
// demands a revision without rejecting.
func (j *Judge) Evaluate(ctx context.Context, responseText string, contextChunks []store.Chunk, mode string) *Score {
	prompt := buildPrompt(responseText, contextChunks, mode)

	content, err := j.llmProvider.Generate(ctx, prompt,
		llm.WithTemperature(0.0), llm.WithMaxTokens(800), llm.WithModel(j.model))
	if err != nil {
		j.logger.Printf("[WARN] Judge call failed: %v", err)
		return DefaultScore()
	}

	score, err := parseScore(content)
	if err != nil {
		j.logger.Printf("[WARN] Judge parse failed: %v", err)
		return DefaultScore()
	}

	j.logger.Printf("[JUDGE] avg=%.1f revise=%v reject=%v", score.AverageScore, score.ShouldRevise(), score.ShouldReject())
	return score
}

// DefaultScore is the stand-in when judging itself fails: all zeros
// and a revision demand, never an outright reject.
func DefaultScore() *Score {
	return &Score{
		RevisionRequired: true,
		Reject:           false,
		Feedback:         []string{"Judge evaluation failed, please retry"},
		Strengths:        []string{},
		CitationsUsed:    []string{},
	}
}

func buildPrompt(responseText string, contextChunks []store.Chunk, mode string) string {
	var sb strings.Builder
	sb.WriteString(constant.JudgeRubric)
	sb.WriteString("\n\nResponse to evaluate (mode: ")
	sb.WriteString(mode)
	sb.WriteString("):\n\"\"\"")
	sb.WriteString(responseText)
	sb.WriteString("\"\"\"\n\nPortfolio context:\n\"\"\"")
	for i, chunk := range contextChunks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		content := chunk.Content
		// Rune-wise so a multi-byte character is never split.
		if runes := []rune(content); len(runes) > 200 {
			content = string(runes[:200])
		}
		sb.WriteString(fmt.Sprintf("**%s**: %s...", chunk.Source, content))
	}
	sb.WriteString("\"\"\"\n\nEvaluate strictly and return JSON only.")
	return sb.String()
}

// parseScore extracts the first well-formed JSON object from the model
// output and recomputes the average locally when the model omitted it.
func parseScore(content string) (*Score, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON found in judge response")
	}

	var score Score
	if err := json.Unmarshal([]byte(content[start:end+1]), &score); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	if score.AverageScore == 0 {
		score.AverageScore = (score.GroundingScore + score.ConsistencyScore +
			score.DepthScore + score.SpecificityScore) / 4
	}
	return &score, nil
}
