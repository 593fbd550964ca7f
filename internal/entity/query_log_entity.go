package entity

import (
	"time"

	"github.com/google/uuid"
)

type QueryLog struct {
	Id             uuid.UUID
	SessionId      *uuid.UUID
	Query          string
	Mode           string
	JudgeScore     map[string]any
	Sources        []string
	ResponseTimeMs int
	CreatedAt      time.Time
}
