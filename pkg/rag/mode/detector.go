package mode

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

// llmFallbackThreshold: below this keyword confidence the cheap
// classifier is asked instead.
const llmFallbackThreshold = 0.4

// Detection is one mode-detection result with how sure we are and why.
type Detection struct {
	Mode       string  `json:"mode"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Detector resolves the interaction mode for a query: keyword scoring
// first, LLM classification when keywords are inconclusive.
type Detector struct {
	llmProvider llm.LLMProvider
	intentModel string
	logger      *log.Logger
}

func NewDetector(llmProvider llm.LLMProvider, intentModel string, logger *log.Logger) *Detector {
	return &Detector{
		llmProvider: llmProvider,
		intentModel: intentModel,
		logger:      logger,
	}
}

// Detect returns the interaction mode for the query. It never fails:
// every fallback lands on the default ama mode.
func (d *Detector) Detect(ctx context.Context, query string) Detection {
	result := DetectByKeywords(query)
	if result.Confidence >= llmFallbackThreshold {
		d.logger.Printf("[MODE] %s (keywords, confidence %.2f)", result.Mode, result.Confidence)
		return result
	}

	llmResult, err := d.detectByLLM(ctx, query)
	if err != nil {
		d.logger.Printf("[WARN] LLM mode detection failed: %v", err)
		return Detection{
			Mode:       store.ModeAMA,
			Confidence: 0.3,
			Reasoning:  "Error in LLM detection, defaulting to AMA",
		}
	}
	d.logger.Printf("[MODE] %s (llm, confidence %.2f)", llmResult.Mode, llmResult.Confidence)
	return llmResult
}

// DetectByKeywords scores the query against each mode's keyword list.
// Confidence is the winning share of all matches. Ties resolve in
// recruiter, engineer, ama order.
func DetectByKeywords(query string) Detection {
	queryLower := strings.ToLower(query)

	modes := []struct {
		name     string
		keywords []string
	}{
		{store.ModeRecruiter, constant.RecruiterKeywords},
		{store.ModeEngineer, constant.EngineerKeywords},
		{store.ModeAMA, constant.AmaKeywords},
	}

	best := store.ModeAMA
	maxScore, totalScore := 0, 0
	for _, m := range modes {
		score := 0
		for _, keyword := range m.keywords {
			if strings.Contains(queryLower, keyword) {
				score++
			}
		}
		totalScore += score
		if score > maxScore {
			maxScore = score
			best = m.name
		}
	}

	if maxScore == 0 {
		return Detection{
			Mode:       store.ModeAMA,
			Confidence: 0.3,
			Reasoning:  "No strong keywords detected, defaulting to AMA",
		}
	}

	return Detection{
		Mode:       best,
		Confidence: float64(maxScore) / float64(totalScore),
		Reasoning:  fmt.Sprintf("Keyword-based: %d matches for %s", maxScore, best),
	}
}

func (d *Detector) detectByLLM(ctx context.Context, query string) (Detection, error) {
	prompt := fmt.Sprintf(constant.ModeClassifierPromptTemplate, query)

	response, err := d.llmProvider.Generate(ctx, prompt,
		llm.WithTemperature(0.0), llm.WithMaxTokens(150), llm.WithModel(d.intentModel))
	if err != nil {
		return Detection{}, fmt.Errorf("mode call: %w", err)
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end <= start {
		return Detection{}, fmt.Errorf("no JSON found in response")
	}

	var parsed Detection
	if err := json.Unmarshal([]byte(response[start:end+1]), &parsed); err != nil {
		return Detection{}, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	if !store.ValidMode(parsed.Mode) {
		parsed.Mode = store.ModeAMA
	}
	if parsed.Confidence == 0 {
		parsed.Confidence = 0.5
	}
	if parsed.Reasoning == "" {
		parsed.Reasoning = "LLM classification"
	}
	return parsed, nil
}
