package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeText      MessageType = "text"
	MessageTypeFile      MessageType = "file"
	MessageTypeScenario  MessageType = "scenario"
	MessageTypeChallenge MessageType = "challenge"
)

type LastMessage struct {
	Content  string
	SenderId uuid.UUID
	SentAt   time.Time
}

type ChatThread struct {
	Id           uuid.UUID
	Participants [2]uuid.UUID
	LastMessage  *LastMessage
	UnreadCounts map[uuid.UUID]int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasParticipant reports whether userID is one of the two participants.
func (t *ChatThread) HasParticipant(userID uuid.UUID) bool {
	return t.Participants[0] == userID || t.Participants[1] == userID
}

// Other returns the participant that is not userID.
func (t *ChatThread) Other(userID uuid.UUID) uuid.UUID {
	if t.Participants[0] == userID {
		return t.Participants[1]
	}
	return t.Participants[0]
}

type Attachment struct {
	FileUrl  string
	FileName string
	FileType string
}

type SharedScenario struct {
	ScenarioId  uuid.UUID
	Title       string
	Description string
	Category    string
	Difficulty  int
	XpReward    int
}

type ChatMessage struct {
	Id             uuid.UUID
	ThreadId       uuid.UUID
	SenderId       uuid.UUID
	Content        string
	Type           MessageType
	ReadBy         []uuid.UUID
	Attachment     *Attachment
	SharedScenario *SharedScenario
	CreatedAt      time.Time
}

// IsReadBy reports whether userID is in ReadBy.
func (m *ChatMessage) IsReadBy(userID uuid.UUID) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// CanonicalPair orders two user ids so that a thread has one identity
// regardless of who started it.
func CanonicalPair(a, b uuid.UUID) (low, high uuid.UUID) {
	if a.String() < b.String() {
		return a, b
	}
	return b, a
}
