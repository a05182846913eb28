package websocket

import (
	"context"
	"encoding/json"
	"time"

	"decidely-be/pkg/relay"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	joinWait   = 5 * time.Second
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	// ID identifies this connection across instances.
	ID string

	Hub *Hub

	Conn *websocket.Conn

	UserID uuid.UUID

	// Buffered channel of outbound frames. Closed by the hub.
	send chan []byte

	// Joined thread rooms, guarded by Hub.mu. Nil once unregistered.
	rooms map[uuid.UUID]struct{}
}

func newClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.NewString(),
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		send:   make(chan []byte, hub.opts.SendBuffer),
		rooms:  make(map[uuid.UUID]struct{}),
	}
}

// reply queues a frame for this connection only.
func (c *Client) reply(frameType, threadID string, payload interface{}) {
	frame, err := relay.Encode(frameType, threadID, payload)
	if err != nil {
		return
	}
	c.Hub.mu.RLock()
	defer c.Hub.mu.RUnlock()
	if c.rooms == nil {
		return
	}
	c.Hub.deliver(c, frame)
}

func (c *Client) replyError(threadID, message string) {
	c.reply(relay.TypeError, threadID, relay.ErrorPayload{Message: message})
}

// readPump pumps frames from the websocket connection to the hub. Handling is
// serial per connection.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(c.Hub.opts.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{"user_id": c.UserID, "error": err.Error()})
			}
			return
		}
		c.handle(data)
	}
}

func (c *Client) handle(data []byte) {
	frame, err := relay.Decode(data)
	if err != nil {
		c.replyError("", "malformed frame")
		return
	}

	threadID, err := uuid.Parse(frame.ThreadID)
	if err != nil {
		c.replyError(frame.ThreadID, "invalid threadId")
		return
	}

	switch frame.Type {
	case relay.TypeJoinThread:
		ctx, cancel := context.WithTimeout(context.Background(), joinWait)
		err := c.Hub.Join(ctx, c, threadID)
		cancel()
		if err != nil {
			c.Hub.logger.Info("Client", "Join rejected", map[string]interface{}{
				"user_id":   c.UserID,
				"thread_id": threadID,
				"error":     err.Error(),
			})
			c.replyError(frame.ThreadID, err.Error())
			return
		}
		c.reply(relay.TypeJoined, frame.ThreadID, nil)

	case relay.TypeLeaveThread:
		c.Hub.Leave(c, threadID)

	case relay.TypeSendMessage:
		if !c.Hub.IsJoined(c, threadID) {
			c.replyError(frame.ThreadID, ErrNotJoined.Error())
			return
		}
		out, err := json.Marshal(relay.Frame{Type: relay.TypeReceiveMessage, ThreadID: frame.ThreadID, Payload: frame.Payload})
		if err != nil {
			return
		}
		c.Hub.Publish(c, threadID, out)

	case relay.TypeTyping:
		if !c.Hub.IsJoined(c, threadID) {
			c.replyError(frame.ThreadID, ErrNotJoined.Error())
			return
		}
		var in relay.TypingPayload
		if len(frame.Payload) > 0 {
			_ = json.Unmarshal(frame.Payload, &in)
		}
		out, err := relay.Encode(relay.TypeUserTyping, frame.ThreadID, relay.TypingPayload{
			UserID:   c.UserID.String(),
			IsTyping: in.IsTyping,
		})
		if err != nil {
			return
		}
		c.Hub.Publish(c, threadID, out)

	default:
		c.replyError(frame.ThreadID, "unknown frame type")
	}
}

// writePump pumps frames from the hub to the websocket connection, one
// websocket message per frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
