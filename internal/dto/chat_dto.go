package dto

import (
	"time"

	"github.com/google/uuid"

	"portfolio-assistant-be/pkg/rag/judge"
)

type ChatRequest struct {
	Message   string `json:"message" validate:"required,min=1,max=2000"`
	Mode      string `json:"mode,omitempty" validate:"omitempty,oneof=recruiter engineer ama"`
	SessionId string `json:"session_id,omitempty" validate:"omitempty,uuid4"`
}

type ChatResponse struct {
	Response   string       `json:"response"`
	Mode       string       `json:"mode"`
	JudgeScore *judge.Score `json:"judge_score,omitempty"`
	Sources    []string     `json:"sources"`
	SessionId  string       `json:"session_id"`
}

type CreateSessionRequest struct {
	Title string `json:"title,omitempty" validate:"omitempty,max=200"`
	Mode  string `json:"mode,omitempty" validate:"omitempty,oneof=recruiter engineer ama"`
}

type CreateSessionResponse struct {
	Id    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Mode  string    `json:"mode"`
}

type ChatHistoryEntry struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type GetChatHistoryResponse struct {
	SessionId uuid.UUID          `json:"session_id"`
	Messages  []ChatHistoryEntry `json:"messages"`
}
