package dto

import "github.com/google/uuid"

// EmbedDocumentMessage asks the consumer to (re)embed every chunk of a
// portfolio document.
type EmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}

// QueryLogMessage carries one answered query to the analytics log.
type QueryLogMessage struct {
	SessionId      *uuid.UUID     `json:"session_id,omitempty"`
	Query          string         `json:"query"`
	Mode           string         `json:"mode"`
	JudgeScore     map[string]any `json:"judge_score,omitempty"`
	Sources        []string       `json:"sources"`
	ResponseTimeMs int            `json:"response_time_ms"`
}
