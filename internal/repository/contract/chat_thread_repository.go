package contract

import (
	"context"

	"decidely-be/internal/entity"
	"decidely-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatThreadRepository interface {
	// FindOrCreateByPair returns the single thread of the unordered pair
	// (a, b), creating it if needed.
	FindOrCreateByPair(ctx context.Context, a, b uuid.UUID) (*entity.ChatThread, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatThread, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.ChatThread, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatThread, error)
	// UpdateSummary persists the last message and unread counters.
	UpdateSummary(ctx context.Context, thread *entity.ChatThread) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}
