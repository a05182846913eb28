package contract

import (
	"context"

	"decidely-be/internal/entity"
	"decidely-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// MarkThreadRead adds userID to ReadBy of every message in the thread
	// that it has not seen yet and returns how many were updated.
	MarkThreadRead(ctx context.Context, threadID, userID uuid.UUID) (int, error)
	DeleteByThreadIDs(ctx context.Context, threadIDs []uuid.UUID) error
}
