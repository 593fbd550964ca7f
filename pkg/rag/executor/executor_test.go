package executor

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/llm"
	"portfolio-assistant-be/pkg/rag/contextshift"
	"portfolio-assistant-be/pkg/rag/dedup"
	"portfolio-assistant-be/pkg/rag/judge"
	"portfolio-assistant-be/pkg/rag/rerank"
	"portfolio-assistant-be/pkg/rag/response"
	"portfolio-assistant-be/pkg/rag/retriever"
	"portfolio-assistant-be/pkg/rag/stage"
	"portfolio-assistant-be/pkg/store"
)

// scriptedLLM pops one response per call, in call order.
type scriptedLLM struct {
	responses []string
	calls     int
}

func (s *scriptedLLM) next() (string, error) {
	if s.calls >= len(s.responses) {
		return "", errors.New("unexpected LLM call")
	}
	r := s.responses[s.calls]
	s.calls++
	return r, nil
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.next()
}

func (s *scriptedLLM) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	text, err := s.next()
	if err != nil {
		return nil, err
	}
	out := make(chan llm.StreamChunk, len(text))
	for _, w := range strings.SplitAfter(text, " ") {
		if w != "" {
			out <- llm.StreamChunk{Content: w}
		}
	}
	close(out)
	return out, nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.next()
}

type fakeEmbedder struct{}

func (fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0, 0}},
	}, nil
}

type fakeSearcher struct {
	chunks []store.Chunk
	err    error
}

func (f *fakeSearcher) SearchSimilarWithScore(ctx context.Context, queryEmbedding []float32, threshold float64, limit int) ([]store.Chunk, error) {
	return f.chunks, f.err
}

const (
	expandIntent  = `{"intent": "expand", "should_filter": false, "reasoning": "test"}`
	clarifyIntent = `{"intent": "clarify", "should_filter": true, "reasoning": "test"}`
	acceptScore   = `{"grounding_score": 8, "consistency_score": 8, "depth_score": 7, "specificity_score": 7, "average_score": 7.5, "revision_required": false, "reject": false, "feedback": [], "strengths": [], "citations_used": []}`
	reviseScore   = `{"grounding_score": 5, "consistency_score": 6, "depth_score": 5, "specificity_score": 5, "average_score": 5.25, "revision_required": true, "reject": false, "feedback": ["needs citations"], "strengths": [], "citations_used": []}`
	rejectScore   = `{"grounding_score": 2, "consistency_score": 3, "depth_score": 2, "specificity_score": 2, "average_score": 2.25, "revision_required": false, "reject": true, "feedback": ["fabricated claims", "no citations"], "strengths": [], "citations_used": []}`
)

func sampleChunks() []store.Chunk {
	return []store.Chunk{
		{ID: "1", Content: "TaxoCapsNet routes taxonomic features through capsules.", Source: "TaxoCapsNet", Embedding: []float32{1, 0, 0}, Similarity: 0.9},
		{ID: "2", Content: "The task queue dispatches jobs over a channel-based bus.", Source: "Task Queue", Embedding: []float32{0, 1, 0}, Similarity: 0.8},
		{ID: "3", Content: "Ingestion splits markdown files into overlapping segments.", Source: "Portfolio Backend", Embedding: []float32{0, 0, 1}, Similarity: 0.7},
	}
}

func newExecutor(llmProvider llm.LLMProvider, searcher retriever.VectorSearcher) *Executor {
	logger := log.New(io.Discard, "", 0)
	embedder := fakeEmbedder{}
	return NewExecutor(
		retriever.NewRetriever(embedder, searcher, 0.6, 5),
		dedup.NewDeduplicator(0.80),
		rerank.NewReranker(embedder),
		contextshift.NewDecider(llmProvider, embedder, "intent-model", 0.65, logger),
		response.NewGenerator(llmProvider, logger),
		judge.NewJudge(llmProvider, "judge-model", logger),
		5, 2, logger,
	)
}

func TestExecuteHappyPath(t *testing.T) {
	llmProvider := &scriptedLLM{responses: []string{
		expandIntent,
		"Grounded answer. [source: TaxoCapsNet]",
		acceptScore,
	}}
	e := newExecutor(llmProvider, &fakeSearcher{chunks: sampleChunks()})

	res, err := e.Execute(context.Background(), Input{
		Query: "Tell me about your projects",
		Mode:  store.ModeEngineer,
	})
	require.NoError(t, err)
	assert.Equal(t, "Grounded answer. [source: TaxoCapsNet]", res.Reply)
	assert.Equal(t, 0, res.Revisions)
	require.NotNil(t, res.JudgeScore)
	assert.Equal(t, 7.5, res.JudgeScore.AverageScore)
	assert.ElementsMatch(t, []string{"TaxoCapsNet", "Task Queue", "Portfolio Backend"}, res.Sources)
}

func TestExecuteEmptyRetrieval(t *testing.T) {
	llmProvider := &scriptedLLM{responses: []string{expandIntent}}
	e := newExecutor(llmProvider, &fakeSearcher{})

	res, err := e.Execute(context.Background(), Input{Query: "anything", Mode: store.ModeAMA})
	require.NoError(t, err)
	assert.Equal(t, constant.InsufficientContextMessage, res.Reply)
	assert.Nil(t, res.JudgeScore)
	assert.Empty(t, res.Sources)
}

func TestExecuteRetrievalFailureFailsOpen(t *testing.T) {
	llmProvider := &scriptedLLM{responses: []string{expandIntent}}
	e := newExecutor(llmProvider, &fakeSearcher{err: errors.New("db down")})

	res, err := e.Execute(context.Background(), Input{Query: "anything", Mode: store.ModeAMA})
	require.NoError(t, err)
	assert.Equal(t, constant.InsufficientContextMessage, res.Reply)

	degraded := false
	for _, o := range res.Outcomes {
		if o.Stage == StageRetrieve && o.Status == stage.Degraded {
			degraded = true
		}
	}
	assert.True(t, degraded, "retrieve stage must be recorded as degraded")
}

func TestExecuteRevisionLoopBounded(t *testing.T) {
	// Judge keeps demanding revisions; the loop must stop at two.
	llmProvider := &scriptedLLM{responses: []string{
		expandIntent,
		"draft one", reviseScore,
		"draft two", reviseScore,
		"draft three", reviseScore,
	}}
	e := newExecutor(llmProvider, &fakeSearcher{chunks: sampleChunks()})

	res, err := e.Execute(context.Background(), Input{Query: "q", Mode: store.ModeEngineer})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Revisions)
	assert.Equal(t, "draft three", res.Reply)
	assert.Equal(t, len(llmProvider.responses), llmProvider.calls, "exactly 1 intent + 3 generations + 3 judgements")
}

func TestExecuteRejectedResponseBecomesApology(t *testing.T) {
	llmProvider := &scriptedLLM{responses: []string{
		expandIntent,
		"ungrounded draft",
		rejectScore,
	}}
	e := newExecutor(llmProvider, &fakeSearcher{chunks: sampleChunks()})

	res, err := e.Execute(context.Background(), Input{Query: "q", Mode: store.ModeAMA})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Reply, constant.RejectionPreamble))
	assert.Contains(t, res.Reply, "fabricated claims, no citations")
}

func TestExecuteRecruiterSkipsJudge(t *testing.T) {
	// Only two responses scripted: intent + generation. A judge call
	// would error out as an unexpected LLM call.
	llmProvider := &scriptedLLM{responses: []string{
		expandIntent,
		"Short recruiter answer. [source: TaxoCapsNet]",
	}}
	e := newExecutor(llmProvider, &fakeSearcher{chunks: sampleChunks()})

	res, err := e.Execute(context.Background(), Input{Query: "q", Mode: store.ModeRecruiter})
	require.NoError(t, err)
	assert.Equal(t, "Short recruiter answer. [source: TaxoCapsNet]", res.Reply)
	assert.Nil(t, res.JudgeScore)
}

func TestExecuteRecruiterStreamsLive(t *testing.T) {
	llmProvider := &scriptedLLM{responses: []string{
		expandIntent,
		"streamed recruiter answer",
	}}
	e := newExecutor(llmProvider, &fakeSearcher{chunks: sampleChunks()})

	var got strings.Builder
	res, err := e.Execute(context.Background(), Input{
		Query:     "q",
		Mode:      store.ModeRecruiter,
		TokenSink: func(fragment string) { got.WriteString(fragment) },
	})
	require.NoError(t, err)
	assert.Equal(t, res.Reply, got.String(), "sink content must equal the final reply")
}

func TestExecuteBufferedModesReplayIntoSink(t *testing.T) {
	llmProvider := &scriptedLLM{responses: []string{
		expandIntent,
		"judged answer text",
		acceptScore,
	}}
	e := newExecutor(llmProvider, &fakeSearcher{chunks: sampleChunks()})

	var got strings.Builder
	res, err := e.Execute(context.Background(), Input{
		Query:     "q",
		Mode:      store.ModeEngineer,
		TokenSink: func(fragment string) { got.WriteString(fragment) },
	})
	require.NoError(t, err)
	assert.Equal(t, res.Reply, got.String())
}

func TestExecuteClassifierFailureDegradesFilterStage(t *testing.T) {
	// The intent call returns prose without JSON, so the decider falls
	// back to embeddings only. The filter stage must show up degraded,
	// not ok, and only once.
	llmProvider := &scriptedLLM{responses: []string{
		"sorry, I cannot classify that",
		"focused answer",
		acceptScore,
	}}
	e := newExecutor(llmProvider, &fakeSearcher{chunks: sampleChunks()})

	res, err := e.Execute(context.Background(), Input{
		Query:           "tell me more",
		Mode:            store.ModeEngineer,
		PreviousQuery:   "tell me about TaxoCapsNet",
		PreviousProject: "TaxoCapsNet",
	})
	require.NoError(t, err)
	assert.Equal(t, contextshift.IntentUnknown, res.Decision.Intent)

	var filterOutcomes []stage.Outcome
	for _, o := range res.Outcomes {
		if o.Stage == StageFilter {
			filterOutcomes = append(filterOutcomes, o)
		}
	}
	require.Len(t, filterOutcomes, 1)
	assert.Equal(t, stage.Degraded, filterOutcomes[0].Status)
}

func TestExecuteFilterStageRecordedOnce(t *testing.T) {
	llmProvider := &scriptedLLM{responses: []string{
		expandIntent,
		"Grounded answer. [source: TaxoCapsNet]",
		acceptScore,
	}}
	e := newExecutor(llmProvider, &fakeSearcher{chunks: sampleChunks()})

	res, err := e.Execute(context.Background(), Input{Query: "q", Mode: store.ModeEngineer})
	require.NoError(t, err)

	count := 0
	for _, o := range res.Outcomes {
		if o.Stage == StageFilter {
			count++
			assert.Equal(t, stage.OK, o.Status)
		}
	}
	assert.Equal(t, 1, count)
}

func TestExecuteContextSinkFiresBeforeTokens(t *testing.T) {
	llmProvider := &scriptedLLM{responses: []string{
		expandIntent,
		"judged answer text",
		acceptScore,
	}}
	e := newExecutor(llmProvider, &fakeSearcher{chunks: sampleChunks()})

	var sources []string
	sinkFired := false
	res, err := e.Execute(context.Background(), Input{
		Query: "q",
		Mode:  store.ModeEngineer,
		ContextSink: func(s []string) {
			sinkFired = true
			sources = s
		},
		TokenSink: func(fragment string) {
			assert.True(t, sinkFired, "sources must be announced before the first token")
		},
	})
	require.NoError(t, err)
	assert.True(t, sinkFired)
	assert.Equal(t, res.Sources, sources)
}

func TestExecuteContextSinkFiresOnEmptyRetrieval(t *testing.T) {
	llmProvider := &scriptedLLM{responses: []string{expandIntent}}
	e := newExecutor(llmProvider, &fakeSearcher{})

	sources := []string{"sentinel"}
	_, err := e.Execute(context.Background(), Input{
		Query:       "anything",
		Mode:        store.ModeAMA,
		ContextSink: func(s []string) { sources = s },
	})
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestExecuteProjectFilterNarrowsContext(t *testing.T) {
	llmProvider := &scriptedLLM{responses: []string{
		clarifyIntent,
		"focused answer",
		acceptScore,
	}}
	e := newExecutor(llmProvider, &fakeSearcher{chunks: sampleChunks()})

	res, err := e.Execute(context.Background(), Input{
		Query:           "tell me more",
		Mode:            store.ModeEngineer,
		PreviousQuery:   "tell me about TaxoCapsNet",
		PreviousProject: "TaxoCapsNet",
		History: []llm.Message{
			{Role: "user", Content: "tell me about TaxoCapsNet"},
			{Role: "assistant", Content: "It classifies taxa. [source: TaxoCapsNet]"},
		},
	})
	require.NoError(t, err)
	assert.True(t, res.Decision.ShouldFilter)
	assert.Equal(t, []string{"TaxoCapsNet"}, res.Sources)
}
