package relay

import (
	"encoding/json"
)

// Frame types exchanged over the relay socket.
const (
	TypeJoinThread     = "join-thread"
	TypeLeaveThread    = "leave-thread"
	TypeSendMessage    = "send-message"
	TypeTyping         = "typing"
	TypeReceiveMessage = "receive-message"
	TypeUserTyping     = "user-typing"
	TypeJoined         = "joined"
	TypeError          = "error"
	TypeNotification   = "notification"
)

// Frame is the JSON envelope of every relay message.
type Frame struct {
	Type     string          `json:"type"`
	ThreadID string          `json:"threadId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

type TypingPayload struct {
	UserID   string `json:"userId,omitempty"`
	IsTyping bool   `json:"isTyping"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NewFrame marshals payload into a frame. A nil payload leaves Payload empty.
func NewFrame(frameType, threadID string, payload interface{}) (Frame, error) {
	f := Frame{Type: frameType, ThreadID: threadID}
	if payload == nil {
		return f, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	f.Payload = raw
	return f, nil
}

// Encode builds and marshals a frame in one step.
func Encode(frameType, threadID string, payload interface{}) ([]byte, error) {
	f, err := NewFrame(frameType, threadID, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(f)
}

func Decode(data []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(data, &f)
	return f, err
}
