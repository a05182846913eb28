package contract

import (
	"context"

	"decidely-be/internal/entity"
	"decidely-be/internal/repository/specification"

	"github.com/google/uuid"
)

type JournalRepository interface {
	Create(ctx context.Context, entry *entity.JournalEntry) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.JournalEntry, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.JournalEntry, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByUserID purges the user's entries, soft-deleted ones included.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
