package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type QueryLog struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId      *uuid.UUID     `gorm:"type:uuid;index"`
	Query          string         `gorm:"type:text;not null"`
	Mode           string         `gorm:"type:varchar(50);not null;index"`
	JudgeScore     datatypes.JSON `gorm:"type:jsonb"`
	Sources        datatypes.JSON `gorm:"type:jsonb"`
	ResponseTimeMs int            `gorm:"default:0"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index"`
}

func (QueryLog) TableName() string {
	return "query_logs"
}
