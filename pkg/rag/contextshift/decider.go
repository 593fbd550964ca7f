package contextshift

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/llm"
)

// Intent constants
const (
	IntentClarify  = "clarify"
	IntentExpand   = "expand"
	IntentCompare  = "compare"
	IntentNewTopic = "new_topic"
	IntentUnknown  = "unknown"
)

// classification is the JSON the intent model is asked to return.
type classification struct {
	Intent       string `json:"intent"`
	ShouldFilter bool   `json:"should_filter"`
	Reasoning    string `json:"reasoning"`
}

// Decision is the outcome of the context-shift analysis for one query.
type Decision struct {
	ShouldFilter   bool   `json:"should_filter"`
	TargetProject  string `json:"target_project,omitempty"`
	Intent         string `json:"intent"`
	EmbeddingShift bool   `json:"embedding_shift"`
	Reasoning      string `json:"reasoning"`
}

var citationPattern = regexp.MustCompile(constant.CitationMarkerPattern)

// ExtractProject pulls the first cited project name out of an
// assistant turn. Empty when the turn carries no citation marker.
func ExtractProject(assistantContent string) string {
	match := citationPattern.FindStringSubmatch(assistantContent)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// Decider combines an LLM intent classifier with embedding similarity
// between consecutive user queries to decide whether retrieval should
// be narrowed to the project already under discussion.
type Decider struct {
	llmProvider llm.LLMProvider
	embedder    embedding.EmbeddingProvider
	intentModel string
	threshold   float64
	logger      *log.Logger
}

func NewDecider(llmProvider llm.LLMProvider, embedder embedding.EmbeddingProvider, intentModel string, threshold float64, logger *log.Logger) *Decider {
	return &Decider{
		llmProvider: llmProvider,
		embedder:    embedder,
		intentModel: intentModel,
		threshold:   threshold,
		logger:      logger,
	}
}

// Decide analyzes the current query against the conversation so far.
// previousQuery is the most recent earlier user turn ("" for the first
// query of a session); previousProject is the project cited in the
// latest assistant turn ("" when none).
//
// Filtering requires both signals to agree: a clarify intent AND
// same-topic embedding similarity. Expand, compare and new-topic
// intents never filter. When the classifier fails the embedding signal
// alone decides. With no previous query there is nothing to compare
// against and retrieval stays unfiltered.
func (d *Decider) Decide(ctx context.Context, query string, history []llm.Message, previousProject, previousQuery string) Decision {
	shifted := d.topicShifted(query, previousQuery)

	cls, err := d.classifyIntent(ctx, query, history, previousProject)
	if err != nil {
		d.logger.Printf("[WARN] Intent classification failed, embeddings only: %v", err)
		shouldFilter := !shifted && previousQuery != "" && previousProject != ""
		return d.decision(shouldFilter, previousProject, IntentUnknown, shifted,
			"embeddings-only: classifier unavailable")
	}

	switch cls.Intent {
	case IntentClarify:
		if shifted || previousProject == "" {
			return d.decision(false, previousProject, cls.Intent, shifted,
				"clarify intent but embeddings show a topic shift")
		}
		return d.decision(true, previousProject, cls.Intent, shifted,
			"clarify intent confirmed by query similarity")
	case IntentExpand, IntentCompare:
		return d.decision(false, previousProject, cls.Intent, shifted, cls.Intent+" intent")
	default:
		return d.decision(false, previousProject, cls.Intent, shifted, "new topic")
	}
}

func (d *Decider) decision(shouldFilter bool, previousProject, intent string, shifted bool, reasoning string) Decision {
	dec := Decision{
		ShouldFilter:   shouldFilter,
		Intent:         intent,
		EmbeddingShift: shifted,
		Reasoning:      reasoning,
	}
	if shouldFilter {
		dec.TargetProject = previousProject
	}
	d.logger.Printf("[CONTEXT] Filter=%v Intent=%s Shift=%v (%s)", dec.ShouldFilter, dec.Intent, dec.EmbeddingShift, dec.Reasoning)
	return dec
}

// topicShifted reports whether the current query moved away from the
// previous one. Any failure defaults to shifted, which keeps retrieval
// unfiltered.
func (d *Decider) topicShifted(query, previousQuery string) bool {
	if previousQuery == "" {
		return true
	}

	currentRes, err := d.embedder.Generate(query, embedding.TaskSemanticSimilarity)
	if err != nil {
		d.logger.Printf("[WARN] Query embedding failed: %v", err)
		return true
	}
	previousRes, err := d.embedder.Generate(previousQuery, embedding.TaskSemanticSimilarity)
	if err != nil {
		d.logger.Printf("[WARN] Previous query embedding failed: %v", err)
		return true
	}

	current := currentRes.Embedding.Values
	previous := previousRes.Embedding.Values
	if len(current) != len(previous) {
		d.logger.Printf("[WARN] Embedding dimension mismatch: %d vs %d", len(current), len(previous))
		return true
	}

	similarity := embedding.CosineSimilarity(current, previous)
	return similarity < d.threshold
}

func (d *Decider) classifyIntent(ctx context.Context, query string, history []llm.Message, previousProject string) (*classification, error) {
	prompt := d.buildPrompt(query, history, previousProject)

	response, err := d.llmProvider.Chat(ctx, []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: "You are a precise intent classifier. Always respond with valid JSON only."},
		{Role: constant.ChatMessageRoleUser, Content: prompt},
	}, llm.WithTemperature(0.0), llm.WithMaxTokens(150), llm.WithModel(d.intentModel))
	if err != nil {
		return nil, fmt.Errorf("intent call: %w", err)
	}

	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var cls classification
	if err := json.Unmarshal([]byte(jsonContent), &cls); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	cls.Intent = strings.ToLower(strings.TrimSpace(cls.Intent))
	switch cls.Intent {
	case IntentClarify, IntentExpand, IntentCompare, IntentNewTopic:
	default:
		cls.Intent = IntentNewTopic
	}
	return &cls, nil
}

func (d *Decider) buildPrompt(query string, history []llm.Message, previousProject string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a conversation intent analyzer for a technical portfolio Q&A system. Analyze the user's query to determine its intent:\n\n")

	prompt.WriteString("1. **CLARIFY** - More details about the SAME project/topic just discussed\n")
	prompt.WriteString("   Examples: \"How does it work?\", \"Tell me more\", \"Why that approach?\", \"Explain the architecture\"\n")
	prompt.WriteString("   Decision: FILTER to same project\n\n")

	prompt.WriteString("2. **EXPAND** - Information about OTHER/DIFFERENT projects or topics\n")
	prompt.WriteString("   Examples: \"What other projects?\", \"Tell me about something else\", \"What else did you work on?\"\n")
	prompt.WriteString("   Decision: DO NOT FILTER\n\n")

	prompt.WriteString("3. **COMPARE** - Comparing multiple projects/technologies/approaches\n")
	prompt.WriteString("   Examples: \"Compare your projects\", \"What's different between X and Y?\", \"Comparison\"\n")
	prompt.WriteString("   Decision: DO NOT FILTER\n\n")

	prompt.WriteString("4. **NEW_TOPIC** - Completely new, unrelated question\n")
	prompt.WriteString("   Examples: \"What are your hobbies?\", \"Tell me about your education\", \"Unrelated question\"\n")
	prompt.WriteString("   Decision: DO NOT FILTER\n\n")

	prompt.WriteString("Recent Conversation Context:\n")
	start := len(history) - 4
	if start < 0 {
		start = 0
	}
	for _, msg := range history[start:] {
		content := msg.Content
		// Rune-wise so a multi-byte character is never split.
		if runes := []rune(content); len(runes) > 200 {
			content = string(runes[:200])
		}
		prompt.WriteString(strings.ToUpper(msg.Role))
		prompt.WriteString(": ")
		prompt.WriteString(content)
		prompt.WriteString("\n")
	}
	prompt.WriteString("\n")

	prompt.WriteString("Previous Topic Discussed: ")
	if previousProject != "" {
		prompt.WriteString(previousProject)
	} else {
		prompt.WriteString("None")
	}
	prompt.WriteString("\n\n")

	prompt.WriteString("Current User Query: \"")
	prompt.WriteString(query)
	prompt.WriteString("\"\n\n")

	prompt.WriteString("Analyze the query and respond ONLY with valid JSON (no other text):\n")
	prompt.WriteString("{\n")
	prompt.WriteString("    \"intent\": \"clarify|expand|compare|new_topic\",\n")
	prompt.WriteString("    \"should_filter\": true/false,\n")
	prompt.WriteString("    \"reasoning\": \"Brief explanation of why\"\n")
	prompt.WriteString("}\n\n")

	prompt.WriteString("Guidelines:\n")
	prompt.WriteString("- If intent is \"clarify\" AND a previous topic exists -> should_filter: true\n")
	prompt.WriteString("- If intent is \"expand\" OR \"compare\" OR \"new_topic\" -> should_filter: false\n")
	prompt.WriteString("- Be conservative: prefer \"expand\" over \"clarify\" if unclear")

	return prompt.String()
}

// extractJSON pulls the first top-level JSON object out of a model
// response that may wrap it in prose or code fences.
func extractJSON(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return response[start : end+1]
}
