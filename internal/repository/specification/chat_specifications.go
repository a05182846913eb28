package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByThreadID struct {
	ThreadID uuid.UUID
}

func (s ByThreadID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("thread_id = ?", s.ThreadID)
}

// ThreadParticipant matches threads where UserID is either participant.
type ThreadParticipant struct {
	UserID uuid.UUID
}

func (s ThreadParticipant) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("participant_low = ? OR participant_high = ?", s.UserID, s.UserID)
}
