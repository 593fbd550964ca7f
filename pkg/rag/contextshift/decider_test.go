package contextshift

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"unicode/utf8"

	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/llm"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.response, f.err
}

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	vec, ok := f.vectors[text]
	if !ok {
		vec = []float32{1, 0}
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

func TestExtractProject(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain marker", "I built it with capsule routing. [source: TaxoCapsNet]", "TaxoCapsNet"},
		{"padded marker", "See [source:   Task Queue  ] for details.", "Task Queue"},
		{"no marker", "No citations here.", ""},
		{"first of several", "[source: Alpha] and later [source: Beta]", "Alpha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractProject(tt.content); got != tt.want {
				t.Errorf("ExtractProject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecideClarifyConfirmedByEmbeddings(t *testing.T) {
	d := NewDecider(
		&fakeLLM{response: `{"intent": "clarify", "should_filter": true, "reasoning": "follow-up"}`},
		&fakeEmbedder{vectors: map[string][]float32{
			"Tell me more":                   {1, 0},
			"How does TaxoCapsNet classify?": {0.95, 0.31},
		}},
		"test-model", 0.65, discard(),
	)

	dec := d.Decide(context.Background(), "Tell me more",
		[]llm.Message{{Role: "user", Content: "How does TaxoCapsNet classify?"}},
		"TaxoCapsNet", "How does TaxoCapsNet classify?")

	if !dec.ShouldFilter {
		t.Fatal("clarify + same topic must filter")
	}
	if dec.TargetProject != "TaxoCapsNet" {
		t.Errorf("target = %q, want TaxoCapsNet", dec.TargetProject)
	}
}

func TestDecideClarifyOverruledByTopicShift(t *testing.T) {
	d := NewDecider(
		&fakeLLM{response: `{"intent": "clarify", "should_filter": true, "reasoning": "follow-up"}`},
		&fakeEmbedder{vectors: map[string][]float32{
			"What are your hobbies?": {1, 0},
			"Explain the reranker":   {0, 1},
		}},
		"test-model", 0.65, discard(),
	)

	dec := d.Decide(context.Background(), "What are your hobbies?", nil,
		"TaxoCapsNet", "Explain the reranker")

	if dec.ShouldFilter {
		t.Fatal("embedding topic shift must veto the clarify filter")
	}
	if !dec.EmbeddingShift {
		t.Error("expected embedding shift to be recorded")
	}
}

func TestDecideExpandNeverFilters(t *testing.T) {
	same := map[string][]float32{"a": {1, 0}, "b": {1, 0}}
	for _, intent := range []string{"expand", "compare", "new_topic"} {
		d := NewDecider(
			&fakeLLM{response: `{"intent": "` + intent + `", "should_filter": false, "reasoning": "x"}`},
			&fakeEmbedder{vectors: same},
			"test-model", 0.65, discard(),
		)
		dec := d.Decide(context.Background(), "a", nil, "Project", "b")
		if dec.ShouldFilter {
			t.Errorf("intent %s must not filter", intent)
		}
	}
}

func TestDecideClassifierFailureFallsBackToEmbeddings(t *testing.T) {
	d := NewDecider(
		&fakeLLM{err: errors.New("model down")},
		&fakeEmbedder{vectors: map[string][]float32{
			"a": {1, 0},
			"b": {1, 0},
		}},
		"test-model", 0.65, discard(),
	)

	dec := d.Decide(context.Background(), "a", nil, "Project", "b")
	if !dec.ShouldFilter {
		t.Fatal("same-topic embeddings should filter when classifier is down")
	}
	if dec.Intent != IntentUnknown {
		t.Errorf("intent = %q, want unknown", dec.Intent)
	}
}

func TestDecideNoPreviousQueryNeverFilters(t *testing.T) {
	d := NewDecider(
		&fakeLLM{response: `{"intent": "clarify", "should_filter": true, "reasoning": "x"}`},
		&fakeEmbedder{},
		"test-model", 0.65, discard(),
	)

	dec := d.Decide(context.Background(), "first question", nil, "", "")
	if dec.ShouldFilter {
		t.Fatal("first query of a session must not be filtered")
	}
}

func TestDecideEmbeddingFailureDefaultsToShift(t *testing.T) {
	d := NewDecider(
		&fakeLLM{response: `{"intent": "clarify", "should_filter": true, "reasoning": "x"}`},
		&fakeEmbedder{err: errors.New("embedder down")},
		"test-model", 0.65, discard(),
	)

	dec := d.Decide(context.Background(), "a", nil, "Project", "b")
	if dec.ShouldFilter {
		t.Fatal("embedding failure must leave retrieval unfiltered")
	}
}

func TestBuildPromptTruncatesHistoryOnRuneBoundary(t *testing.T) {
	d := NewDecider(&fakeLLM{}, &fakeEmbedder{}, "test-model", 0.65, discard())

	// 300 three-byte runes; a byte-indexed cut would split one in half.
	long := strings.Repeat("日", 300)
	prompt := d.buildPrompt("q", []llm.Message{{Role: "user", Content: long}}, "")

	if !utf8.ValidString(prompt) {
		t.Fatal("prompt must stay valid UTF-8")
	}
	want := string([]rune(long)[:200])
	if !strings.Contains(prompt, "USER: "+want+"\n") {
		t.Error("history entry should be cut to 200 runes")
	}
	if strings.Contains(prompt, long) {
		t.Error("full history entry should not appear in the prompt")
	}
}

func TestDecideParsesJSONWrappedInProse(t *testing.T) {
	d := NewDecider(
		&fakeLLM{response: "Sure! Here is the analysis:\n{\"intent\": \"expand\", \"should_filter\": false, \"reasoning\": \"asks for other work\"}\nHope that helps."},
		&fakeEmbedder{vectors: map[string][]float32{"a": {1, 0}, "b": {1, 0}}},
		"test-model", 0.65, discard(),
	)

	dec := d.Decide(context.Background(), "a", nil, "Project", "b")
	if dec.Intent != IntentExpand {
		t.Errorf("intent = %q, want expand", dec.Intent)
	}
}
