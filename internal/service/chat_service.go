package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"portfolio-assistant-be/internal/config"
	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/internal/dto"
	"portfolio-assistant-be/internal/entity"
	"portfolio-assistant-be/internal/repository/memory"
	"portfolio-assistant-be/internal/repository/specification"
	"portfolio-assistant-be/internal/repository/unitofwork"
	"portfolio-assistant-be/pkg/llm"
	"portfolio-assistant-be/pkg/rag/contextshift"
	"portfolio-assistant-be/pkg/rag/executor"
	"portfolio-assistant-be/pkg/rag/mode"
	"portfolio-assistant-be/pkg/store"
)

// ChatStreamHooks carries the streaming callbacks for one chat turn.
// OnStart fires exactly once, after the session, answer mode and
// retrieval context are resolved and before the first token. Either
// hook may be nil.
type ChatStreamHooks struct {
	OnStart func(mode, sessionId string, sources []string)
	OnToken func(fragment string)
}

type IChatService interface {
	CreateSession(ctx context.Context, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetChatHistory(ctx context.Context, sessionId uuid.UUID) (*dto.GetChatHistoryResponse, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error

	// Chat answers one turn. When hooks is non-nil the answer is also
	// delivered incrementally through it.
	Chat(ctx context.Context, request *dto.ChatRequest, hooks *ChatStreamHooks) (*dto.ChatResponse, error)
}

type chatService struct {
	uowFactory   unitofwork.RepositoryFactory
	sessionRepo  *memory.SessionRepository
	pipeline     *executor.Executor
	modeDetector *mode.Detector
	publisher    IPublisherService
	ragConfig    config.RagConfig
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	sessionRepo *memory.SessionRepository,
	pipeline *executor.Executor,
	modeDetector *mode.Detector,
	publisher IPublisherService,
	ragConfig config.RagConfig,
) IChatService {
	return &chatService{
		uowFactory:   uowFactory,
		sessionRepo:  sessionRepo,
		pipeline:     pipeline,
		modeDetector: modeDetector,
		publisher:    publisher,
		ragConfig:    ragConfig,
	}
}

func (cs *chatService) CreateSession(ctx context.Context, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	title := request.Title
	if title == "" {
		title = "New conversation"
	}
	sessionMode := request.Mode
	if sessionMode == "" {
		sessionMode = store.ModeAMA
	}

	session := entity.ChatSession{
		Id:        uuid.New(),
		Title:     title,
		Mode:      sessionMode,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{
		Id:    session.Id,
		Title: session.Title,
		Mode:  session.Mode,
	}, nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) (*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Session not found")
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionId{SessionId: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.ChatHistoryEntry, len(messages))
	for i, m := range messages {
		entries[i] = dto.ChatHistoryEntry{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}
	return &dto.GetChatHistoryResponse{
		SessionId: sessionId,
		Messages:  entries,
	}, nil
}

func (cs *chatService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if session == nil {
		return fiber.NewError(fiber.StatusNotFound, "Session not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	cs.sessionRepo.Delete(sessionId.String())

	return uow.Commit()
}

func (cs *chatService) Chat(ctx context.Context, request *dto.ChatRequest, hooks *ChatStreamHooks) (*dto.ChatResponse, error) {
	started := time.Now()
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := cs.resolveSession(ctx, uow, request)
	if err != nil {
		return nil, err
	}

	answerMode := request.Mode
	if !store.ValidMode(answerMode) {
		detection := cs.modeDetector.Detect(ctx, request.Message)
		answerMode = detection.Mode
	}

	// History is an enrichment; a read failure must not block the
	// answer, so the turn proceeds without it.
	history, err := cs.loadHistory(ctx, uow, session.Id)
	if err != nil {
		log.Printf("[WARN] Failed to load chat history for session %s: %v", session.Id, err)
		history = nil
	}

	prevQuery, prevProject := cs.previousState(session.Id.String(), history)

	input := executor.Input{
		Query:           request.Message,
		Mode:            answerMode,
		History:         history,
		PreviousQuery:   prevQuery,
		PreviousProject: prevProject,
	}
	if hooks != nil {
		input.TokenSink = hooks.OnToken
		if onStart := hooks.OnStart; onStart != nil {
			sessionId := session.Id.String()
			input.ContextSink = func(sources []string) {
				onStart(answerMode, sessionId, sources)
			}
		}
	}

	result, err := cs.pipeline.Execute(ctx, input)
	if err != nil {
		return nil, err
	}

	// The answer already exists at this point; losing the transcript
	// row is logged, never surfaced.
	if err := cs.persistTurn(ctx, uow, session.Id, request.Message, result.Reply); err != nil {
		log.Printf("[ERROR] Failed to persist chat turn for session %s: %v", session.Id, err)
	}

	cs.rememberState(session.Id.String(), request.Message, result.Reply, prevProject, answerMode)
	cs.publishQueryLog(session.Id, request.Message, result, int(time.Since(started).Milliseconds()))

	return &dto.ChatResponse{
		Response:   result.Reply,
		Mode:       result.Mode,
		JudgeScore: result.JudgeScore,
		Sources:    result.Sources,
		SessionId:  session.Id.String(),
	}, nil
}

// resolveSession loads the requested session or starts a fresh one when
// no session id was sent.
func (cs *chatService) resolveSession(ctx context.Context, uow unitofwork.UnitOfWork, request *dto.ChatRequest) (*entity.ChatSession, error) {
	if request.SessionId != "" {
		sessionId, err := uuid.Parse(request.SessionId)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
		}
		session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, fiber.NewError(fiber.StatusNotFound, "Session not found")
		}
		return session, nil
	}

	title := request.Message
	// Rune-wise so a multi-byte character is never split.
	if runes := []rune(title); len(runes) > 80 {
		title = string(runes[:80])
	}
	session := entity.ChatSession{
		Id:        uuid.New(),
		Title:     title,
		Mode:      request.Mode,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// loadHistory returns the most recent turns in chronological order.
func (cs *chatService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]llm.Message, error) {
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionId{SessionId: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: cs.ragConfig.HistoryLimit},
	)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, len(messages))
	for i, m := range messages {
		history[len(messages)-1-i] = llm.Message{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return history, nil
}

// previousState recovers the last query and last cited project, from
// the in-memory session cache when warm, otherwise from the persisted
// history.
func (cs *chatService) previousState(sessionID string, history []llm.Message) (string, string) {
	if state, ok := cs.sessionRepo.Get(sessionID); ok {
		return state.LastQuery, state.LastProject
	}

	var prevQuery, prevProject string
	for i := len(history) - 1; i >= 0; i-- {
		switch history[i].Role {
		case constant.ChatMessageRoleUser:
			if prevQuery == "" {
				prevQuery = history[i].Content
			}
		case constant.ChatMessageRoleAssistant:
			if prevProject == "" {
				prevProject = contextshift.ExtractProject(history[i].Content)
			}
		}
		if prevQuery != "" && prevProject != "" {
			break
		}
	}
	return prevQuery, prevProject
}

func (cs *chatService) persistTurn(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, query, reply string) error {
	now := time.Now()
	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Content:       query,
		Role:          constant.ChatMessageRoleUser,
		ChatSessionId: sessionId,
		CreatedAt:     now,
	}
	assistantMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Content:       reply,
		Role:          constant.ChatMessageRoleAssistant,
		ChatSessionId: sessionId,
		CreatedAt:     now.Add(time.Millisecond),
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &assistantMessage); err != nil {
		return err
	}
	return uow.Commit()
}

// rememberState refreshes the cached conversational state. A reply with
// no citation keeps the previous project, an apology should not erase
// what the conversation was about.
func (cs *chatService) rememberState(sessionID, query, reply, prevProject, answerMode string) {
	project := contextshift.ExtractProject(reply)
	if project == "" {
		project = prevProject
	}
	cs.sessionRepo.Save(&store.Session{
		ID:          sessionID,
		LastQuery:   query,
		LastProject: project,
		Mode:        answerMode,
	})
}

// publishQueryLog sends the analytics event without blocking or failing
// the chat turn.
func (cs *chatService) publishQueryLog(sessionId uuid.UUID, query string, result *executor.Result, elapsedMs int) {
	msg := dto.QueryLogMessage{
		SessionId:      &sessionId,
		Query:          query,
		Mode:           result.Mode,
		Sources:        result.Sources,
		ResponseTimeMs: elapsedMs,
	}
	if result.JudgeScore != nil {
		raw, err := json.Marshal(result.JudgeScore)
		if err == nil {
			var m map[string]any
			if err := json.Unmarshal(raw, &m); err == nil {
				msg.JudgeScore = m
			}
		}
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[ERROR] Failed to marshal query log event: %v", err)
		return
	}
	if err := cs.publisher.Publish(context.Background(), cs.ragConfig.QueryLogTopic, payload); err != nil {
		log.Printf("[ERROR] Failed to publish query log event: %v", err)
	}
}
