package unitofwork

import (
	"context"

	"portfolio-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PortfolioDocumentRepository() contract.PortfolioDocumentRepository
	PortfolioChunkRepository() contract.PortfolioChunkRepository

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	QueryLogRepository() contract.QueryLogRepository
}
