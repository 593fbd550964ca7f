package dto

import "github.com/google/uuid"

type IngestRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Source      string `json:"source" validate:"required,max=200"`
	ProjectType string `json:"project_type,omitempty"`
	Content     string `json:"content" validate:"required,min=1"`
}

type IngestResponse struct {
	Success       bool      `json:"success"`
	DocumentId    uuid.UUID `json:"document_id"`
	ChunksCreated int       `json:"chunks_created"`
}
