package entity

import (
	"time"

	"github.com/google/uuid"
)

type PortfolioDocument struct {
	Id          uuid.UUID
	Title       string
	Source      string
	ProjectType string
	Content     string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
