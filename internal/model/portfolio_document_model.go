package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PortfolioDocument struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string         `gorm:"type:text;not null"`
	Source      string         `gorm:"type:text;not null;index"`
	ProjectType string         `gorm:"type:varchar(100)"`
	Content     string         `gorm:"type:text;not null"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (PortfolioDocument) TableName() string {
	return "portfolio_documents"
}
