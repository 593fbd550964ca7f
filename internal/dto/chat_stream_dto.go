package dto

import "portfolio-assistant-be/pkg/rag/judge"

// SSE event payloads for POST /api/chat/stream. Each frame is
// "event: <name>\ndata: <json>\n\n".

type StreamStartEvent struct {
	Mode      string   `json:"mode"`
	SessionId string   `json:"session_id"`
	Sources   []string `json:"sources"`
}

type StreamTokenEvent struct {
	Content string `json:"content"`
}

type StreamEndEvent struct {
	SessionId  string       `json:"session_id"`
	JudgeScore *judge.Score `json:"judge_score,omitempty"`
	Sources    []string     `json:"sources"`
}

type StreamErrorEvent struct {
	Message string `json:"message"`
}
