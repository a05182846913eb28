package dto

import (
	"time"

	"github.com/google/uuid"
)

type AttachmentRequest struct {
	FileUrl  string `json:"fileUrl" validate:"required,url"`
	FileName string `json:"fileName" validate:"required,max=255"`
	FileType string `json:"fileType" validate:"required,max=100"`
}

// SendMessageRequest needs content, an attachment or a shared scenario.
type SendMessageRequest struct {
	RecipientId uuid.UUID          `json:"recipientId" validate:"required"`
	Content     string             `json:"content" validate:"max=5000"`
	Attachment  *AttachmentRequest `json:"attachment"`
	ScenarioId  *uuid.UUID         `json:"scenarioId"`
}

type AttachmentResponse struct {
	FileUrl  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

type SharedScenarioResponse struct {
	ScenarioId  uuid.UUID `json:"scenarioId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Difficulty  int       `json:"difficulty"`
	XpReward    int       `json:"xpReward"`
}

type ChatMessageResponse struct {
	Id             uuid.UUID               `json:"id"`
	ThreadId       uuid.UUID               `json:"threadId"`
	SenderId       uuid.UUID               `json:"senderId"`
	Content        string                  `json:"content"`
	Type           string                  `json:"type"`
	ReadBy         []uuid.UUID             `json:"readBy"`
	Attachment     *AttachmentResponse     `json:"attachment,omitempty"`
	SharedScenario *SharedScenarioResponse `json:"sharedScenario,omitempty"`
	CreatedAt      time.Time               `json:"createdAt"`
}

type LastMessageResponse struct {
	Content  string    `json:"content"`
	SenderId uuid.UUID `json:"senderId"`
	SentAt   time.Time `json:"sentAt"`
}

type ChatThreadResponse struct {
	Id            uuid.UUID            `json:"id"`
	Participants  []uuid.UUID          `json:"participants"`
	OtherUser     *UserResponse        `json:"otherUser,omitempty"`
	LastMessage   *LastMessageResponse `json:"lastMessage"`
	UnreadCount   int                  `json:"unreadCount"`
	LastUpdatedAt time.Time            `json:"lastUpdatedAt"`
}

type ChatListResponse struct {
	Threads     []ChatThreadResponse `json:"threads"`
	TotalUnread int                  `json:"totalUnread"`
}

type ChatThreadDetailResponse struct {
	ChatThreadResponse
	Messages []ChatMessageResponse `json:"messages"`
}

type SendMessageResponse struct {
	ThreadId uuid.UUID           `json:"threadId"`
	Message  ChatMessageResponse `json:"message"`
}

type MarkReadResponse struct {
	ThreadId uuid.UUID `json:"threadId"`
	Updated  int       `json:"updated"`
}
