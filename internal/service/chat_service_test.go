package service

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-assistant-be/internal/config"
	"portfolio-assistant-be/internal/dto"
	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/repository/contract"
	"portfolio-assistant-be/internal/repository/memory"
	"portfolio-assistant-be/internal/repository/specification"
	"portfolio-assistant-be/internal/repository/unitofwork"
	"portfolio-assistant-be/pkg/embedding"
	"portfolio-assistant-be/pkg/llm"
	"portfolio-assistant-be/pkg/rag/contextshift"
	"portfolio-assistant-be/pkg/rag/dedup"
	"portfolio-assistant-be/pkg/rag/executor"
	"portfolio-assistant-be/pkg/rag/judge"
	"portfolio-assistant-be/pkg/rag/mode"
	"portfolio-assistant-be/pkg/rag/rerank"
	"portfolio-assistant-be/pkg/rag/response"
	"portfolio-assistant-be/pkg/rag/retriever"
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

type testEmbedder struct{}

func (testEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0, 0}},
	}, nil
}

type fakeSearcher struct {
	chunks []store.Chunk
}

func (f *fakeSearcher) SearchSimilarWithScore(ctx context.Context, queryEmbedding []float32, threshold float64, limit int) ([]store.Chunk, error) {
	return f.chunks, nil
}

type fakeSessionRepo struct {
	session   *entity.ChatSession
	created   []*entity.ChatSession
	createErr error
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, session)
	return nil
}

func (f *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	return nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	return f.session, nil
}

func (f *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	return nil, nil
}

type fakeMessageRepo struct {
	messages  []*entity.ChatMessage
	created   []*entity.ChatMessage
	findErr   error
	createErr error
}

func (f *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, message)
	return nil
}

func (f *fakeMessageRepo) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	return nil
}

func (f *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.messages, nil
}

func (f *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(f.messages)), nil
}

type fakeUnitOfWork struct {
	sessions *fakeSessionRepo
	messages *fakeMessageRepo
}

func (f *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (f *fakeUnitOfWork) Commit() error                   { return nil }
func (f *fakeUnitOfWork) Rollback() error                 { return nil }

func (f *fakeUnitOfWork) PortfolioDocumentRepository() contract.PortfolioDocumentRepository {
	return nil
}
func (f *fakeUnitOfWork) PortfolioChunkRepository() contract.PortfolioChunkRepository { return nil }

func (f *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return f.sessions
}

func (f *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return f.messages
}

func (f *fakeUnitOfWork) QueryLogRepository() contract.QueryLogRepository { return nil }

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type fakePublisher struct{}

func (fakePublisher) Publish(ctx context.Context, topic string, payload []byte) error { return nil }

const (
	expandIntent = `{"intent": "expand", "should_filter": false, "reasoning": "test"}`
	acceptScore  = `{"grounding_score": 8, "consistency_score": 8, "depth_score": 7, "specificity_score": 7, "average_score": 7.5, "revision_required": false, "reject": false, "feedback": [], "strengths": [], "citations_used": []}`
)

func sampleChunks() []store.Chunk {
	return []store.Chunk{
		{ID: "1", Content: "TaxoCapsNet routes taxonomic features through capsules.", Source: "TaxoCapsNet", Embedding: []float32{1, 0, 0}, Similarity: 0.9},
		{ID: "2", Content: "The task queue dispatches jobs over a channel-based bus.", Source: "Task Queue", Embedding: []float32{0, 1, 0}, Similarity: 0.8},
	}
}

func newTestChatService(llmProvider llm.LLMProvider, chunks []store.Chunk, uow *fakeUnitOfWork) IChatService {
	logger := log.New(io.Discard, "", 0)
	embedder := testEmbedder{}
	pipeline := executor.NewExecutor(
		retriever.NewRetriever(embedder, &fakeSearcher{chunks: chunks}, 0.6, 5),
		dedup.NewDeduplicator(0.80),
		rerank.NewReranker(embedder),
		contextshift.NewDecider(llmProvider, embedder, "intent-model", 0.65, logger),
		response.NewGenerator(llmProvider, logger),
		judge.NewJudge(llmProvider, "judge-model", logger),
		5, 2, logger,
	)
	return NewChatService(
		&fakeFactory{uow: uow},
		memory.NewSessionRepository(),
		pipeline,
		mode.NewDetector(llmProvider, "intent-model", logger),
		fakePublisher{},
		config.RagConfig{TopK: 5, HistoryLimit: 10, QueryLogTopic: "QUERY_LOG"},
	)
}

func TestChatPersistFailureStillReturnsAnswer(t *testing.T) {
	uow := &fakeUnitOfWork{
		sessions: &fakeSessionRepo{},
		messages: &fakeMessageRepo{createErr: errors.New("insert failed")},
	}
	llmProvider := &scriptedLLM{responses: []string{
		expandIntent,
		"Grounded answer. [source: TaxoCapsNet]",
		acceptScore,
	}}
	cs := newTestChatService(llmProvider, sampleChunks(), uow)

	res, err := cs.Chat(context.Background(), &dto.ChatRequest{
		Message: "Tell me about your projects",
		Mode:    store.ModeEngineer,
	}, nil)
	require.NoError(t, err, "a dead transcript store must not cost the user the answer")
	assert.Equal(t, "Grounded answer. [source: TaxoCapsNet]", res.Response)
	assert.NotEmpty(t, res.SessionId)
}

func TestChatHistoryLoadFailureStillAnswers(t *testing.T) {
	uow := &fakeUnitOfWork{
		sessions: &fakeSessionRepo{},
		messages: &fakeMessageRepo{findErr: errors.New("select failed")},
	}
	llmProvider := &scriptedLLM{responses: []string{
		expandIntent,
		"Grounded answer. [source: TaxoCapsNet]",
		acceptScore,
	}}
	cs := newTestChatService(llmProvider, sampleChunks(), uow)

	res, err := cs.Chat(context.Background(), &dto.ChatRequest{
		Message: "Tell me about your projects",
		Mode:    store.ModeEngineer,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Grounded answer. [source: TaxoCapsNet]", res.Response)
}

func TestChatStreamHooksStartCarriesResolvedState(t *testing.T) {
	uow := &fakeUnitOfWork{
		sessions: &fakeSessionRepo{},
		messages: &fakeMessageRepo{},
	}
	// No mode and no session in the request: the start hook must see
	// the detected mode and the freshly created session, not the raw
	// request values. "candidate" and "job" resolve to recruiter by
	// keywords alone, so no classifier call is scripted.
	llmProvider := &scriptedLLM{responses: []string{
		expandIntent,
		"Recruiter answer text",
	}}
	cs := newTestChatService(llmProvider, sampleChunks(), uow)

	var startMode, startSession string
	var startSources []string
	startFired := false
	res, err := cs.Chat(context.Background(), &dto.ChatRequest{
		Message: "Is this candidate a fit for the job?",
	}, &ChatStreamHooks{
		OnStart: func(mode, sessionId string, sources []string) {
			startFired = true
			startMode = mode
			startSession = sessionId
			startSources = sources
		},
		OnToken: func(fragment string) {
			assert.True(t, startFired, "start must be announced before the first token")
		},
	})
	require.NoError(t, err)
	assert.True(t, startFired)
	assert.Equal(t, store.ModeRecruiter, startMode)
	assert.Equal(t, res.SessionId, startSession)
	assert.NotEmpty(t, startSession)
	assert.Equal(t, res.Sources, startSources)
	assert.NotEmpty(t, startSources)
}

func TestChatGeneratedTitleKeepsRunesIntact(t *testing.T) {
	uow := &fakeUnitOfWork{
		sessions: &fakeSessionRepo{},
		messages: &fakeMessageRepo{},
	}
	llmProvider := &scriptedLLM{responses: []string{expandIntent}}
	cs := newTestChatService(llmProvider, nil, uow)

	_, err := cs.Chat(context.Background(), &dto.ChatRequest{
		Message: strings.Repeat("日", 120),
		Mode:    store.ModeAMA,
	}, nil)
	require.NoError(t, err)

	require.Len(t, uow.sessions.created, 1)
	title := uow.sessions.created[0].Title
	assert.True(t, utf8.ValidString(title))
	assert.Len(t, []rune(title), 80)
}
