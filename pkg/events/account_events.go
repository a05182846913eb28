package events

import (
	"time"

	"github.com/google/uuid"
)

const TypeUserDeleted = "USER_DELETED"

func NewUserDeleted(userID uuid.UUID, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeUserDeleted,
		Data: map[string]interface{}{
			"user_id": userID.String(),
		},
		OccurredAt: at,
	}
}
