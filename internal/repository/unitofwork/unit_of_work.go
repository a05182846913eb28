package unitofwork

import (
	"context"

	"decidely-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ProgressRepository() contract.ProgressRepository
	ScenarioRepository() contract.ScenarioRepository

	ChatThreadRepository() contract.ChatThreadRepository
	ChatMessageRepository() contract.ChatMessageRepository
	JournalRepository() contract.JournalRepository
}
