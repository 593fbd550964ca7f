package mode

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"portfolio-assistant-be/pkg/llm"
	"portfolio-assistant-be/pkg/store"
)

type fakeLLM struct {
	response string
	err      error
	called   bool
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.called = true
	return f.response, f.err
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	f.called = true
	return f.response, f.err
}

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

func TestDetectByKeywords(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"recruiter", "Are you hiring ready? Tell me about your experience and skills", store.ModeRecruiter},
		{"engineer", "Explain the architecture and the tradeoff behind your database design", store.ModeEngineer},
		{"ama", "What would you do differently in hindsight?", store.ModeAMA},
		{"no keywords defaults ama", "xyzzy", store.ModeAMA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectByKeywords(tt.query)
			if got.Mode != tt.want {
				t.Errorf("DetectByKeywords(%q).Mode = %s, want %s", tt.query, got.Mode, tt.want)
			}
		})
	}
}

func TestDetectKeywordConfidenceSkipsLLM(t *testing.T) {
	fake := &fakeLLM{response: `{"mode": "engineer", "confidence": 0.9}`}
	d := NewDetector(fake, "test-model", discard())

	got := d.Detect(context.Background(), "Explain the architecture and design tradeoff of the system")
	if got.Mode != store.ModeEngineer {
		t.Fatalf("mode = %s, want engineer", got.Mode)
	}
	if fake.called {
		t.Error("confident keyword match must not call the LLM")
	}
}

func TestDetectLowConfidenceUsesLLM(t *testing.T) {
	fake := &fakeLLM{response: `{"mode": "recruiter", "confidence": 0.8, "reasoning": "hiring question"}`}
	d := NewDetector(fake, "test-model", discard())

	got := d.Detect(context.Background(), "zzz qqq")
	if !fake.called {
		t.Fatal("keyword miss must fall back to the LLM")
	}
	if got.Mode != store.ModeRecruiter {
		t.Errorf("mode = %s, want recruiter", got.Mode)
	}
}

func TestDetectLLMFailureDefaultsToAMA(t *testing.T) {
	d := NewDetector(&fakeLLM{err: errors.New("model down")}, "test-model", discard())

	got := d.Detect(context.Background(), "zzz qqq")
	if got.Mode != store.ModeAMA {
		t.Errorf("mode = %s, want ama default", got.Mode)
	}
}

func TestDetectLLMInvalidModeNormalized(t *testing.T) {
	d := NewDetector(&fakeLLM{response: `{"mode": "pirate", "confidence": 0.9}`}, "test-model", discard())

	got := d.Detect(context.Background(), "zzz qqq")
	if got.Mode != store.ModeAMA {
		t.Errorf("invalid mode must normalize to ama, got %s", got.Mode)
	}
}
