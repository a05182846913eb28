package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChatThread stores its two participants in canonical order
// (ParticipantLow < ParticipantHigh) so the pair index is order independent.
type ChatThread struct {
	Id                  uuid.UUID                         `gorm:"type:uuid;primaryKey"`
	ParticipantLow      uuid.UUID                         `gorm:"type:uuid;not null;uniqueIndex:idx_chat_thread_pair,priority:1"`
	ParticipantHigh     uuid.UUID                         `gorm:"type:uuid;not null;uniqueIndex:idx_chat_thread_pair,priority:2;index"`
	LastMessageContent  *string                           `gorm:"type:text"`
	LastMessageSenderId *uuid.UUID                        `gorm:"type:uuid"`
	LastMessageAt       *time.Time                        `gorm:"index"`
	UnreadCounts        datatypes.JSONType[map[string]int] `gorm:"type:jsonb"`
	CreatedAt           time.Time                         `gorm:"autoCreateTime"`
	UpdatedAt           time.Time                         `gorm:"autoUpdateTime"`
}

func (ChatThread) TableName() string {
	return "chat_threads"
}

type SharedScenarioSummary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Difficulty  int    `json:"difficulty"`
	XpReward    int    `json:"xp_reward"`
}

type ChatMessage struct {
	Id               uuid.UUID                                 `gorm:"type:uuid;primaryKey"`
	ThreadId         uuid.UUID                                 `gorm:"type:uuid;not null;index:idx_chat_messages_thread_created,priority:1"`
	SenderId         uuid.UUID                                 `gorm:"type:uuid;not null"`
	Content          string                                    `gorm:"type:text;not null;default:''"`
	MessageType      string                                    `gorm:"type:varchar(20);not null;default:'text'"`
	ReadBy           datatypes.JSONSlice[string]               `gorm:"type:jsonb"`
	FileUrl          *string                                   `gorm:"type:text"`
	FileName         *string                                   `gorm:"type:varchar(255)"`
	FileType         *string                                   `gorm:"type:varchar(100)"`
	SharedScenarioId *uuid.UUID                                `gorm:"type:uuid"`
	SharedScenario   datatypes.JSONType[SharedScenarioSummary] `gorm:"type:jsonb"`
	CreatedAt        time.Time                                 `gorm:"not null;index:idx_chat_messages_thread_created,priority:2"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
