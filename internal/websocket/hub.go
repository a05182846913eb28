package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"decidely-be/internal/model"
	"decidely-be/internal/pkg/logger"
	"decidely-be/pkg/relay"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrNotParticipant = errors.New("not a participant of this thread")
	ErrNotJoined      = errors.New("thread not joined")
)

// ThreadAuthorizer decides whether a user may join a thread room.
type ThreadAuthorizer interface {
	IsParticipant(ctx context.Context, threadID, userID uuid.UUID) (bool, error)
}

type Options struct {
	InstanceID     string
	RedisChannel   string
	SendBuffer     int
	MaxMessageSize int64
}

// clusterEnvelope is what travels between instances over Redis.
// Exactly one of ThreadID / TargetUserID is set; TargetUserID "*" means everyone.
type clusterEnvelope struct {
	OriginInstance string          `json:"origin_instance"`
	OriginConn     string          `json:"origin_conn,omitempty"`
	ThreadID       string          `json:"thread_id,omitempty"`
	TargetUserID   string          `json:"target_user_id,omitempty"`
	Message        json.RawMessage `json:"message"`
}

type Hub struct {
	// Live connections per user (multi-device)
	clients map[uuid.UUID]map[*Client]struct{}

	// Thread rooms
	rooms map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out, optional
	rdb *redis.Client

	authorizer ThreadAuthorizer
	opts       Options
	logger     logger.ILogger
}

func NewHub(rdb *redis.Client, authorizer ThreadAuthorizer, opts Options, log logger.ILogger) *Hub {
	if opts.InstanceID == "" {
		opts.InstanceID = uuid.NewString()
	}
	if opts.RedisChannel == "" {
		opts.RedisChannel = "relay_events"
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = 8192
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		rooms:      make(map[uuid.UUID]map[*Client]struct{}),
		rdb:        rdb,
		authorizer: authorizer,
		opts:       opts,
		logger:     log,
	}
}

// Run owns registration until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			conns, ok := h.clients[client.UserID]
			if !ok {
				conns = make(map[*Client]struct{})
				h.clients[client.UserID] = conns
			}
			conns[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID, "conn_id": client.ID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// remove detaches a client from every room and closes its send channel once.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(h.clients, client.UserID)
	}

	for threadID := range client.rooms {
		if room, ok := h.rooms[threadID]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, threadID)
			}
		}
	}
	client.rooms = nil
	close(client.send)

	h.logger.Debug("Hub", "Client unregistered", map[string]interface{}{"user_id": client.UserID, "conn_id": client.ID})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for c := range conns {
			c.rooms = nil
			close(c.send)
		}
	}
	h.clients = make(map[uuid.UUID]map[*Client]struct{})
	h.rooms = make(map[uuid.UUID]map[*Client]struct{})
}

// Join admits the client into a thread room after the participant check.
func (h *Hub) Join(ctx context.Context, client *Client, threadID uuid.UUID) error {
	if h.authorizer != nil {
		ok, err := h.authorizer.IsParticipant(ctx, threadID, client.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotParticipant
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if client.rooms == nil {
		// already unregistered
		return ErrNotJoined
	}
	room, ok := h.rooms[threadID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[threadID] = room
	}
	room[client] = struct{}{}
	client.rooms[threadID] = struct{}{}
	return nil
}

func (h *Hub) Leave(client *Client, threadID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[threadID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, threadID)
		}
	}
	delete(client.rooms, threadID)
}

func (h *Hub) IsJoined(client *Client, threadID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := client.rooms[threadID]
	return ok
}

// RoomSize reports how many local connections joined threadID.
func (h *Hub) RoomSize(threadID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[threadID])
}

// Publish fans a frame out to every other connection in the room, locally and
// on peer instances. The publishing connection never receives its own frame.
func (h *Hub) Publish(from *Client, threadID uuid.UUID, frame []byte) {
	h.mu.RLock()
	for c := range h.rooms[threadID] {
		if c == from {
			continue
		}
		h.deliver(c, frame)
	}
	h.mu.RUnlock()

	originConn := ""
	if from != nil {
		originConn = from.ID
	}
	h.forward(clusterEnvelope{
		OriginInstance: h.opts.InstanceID,
		OriginConn:     originConn,
		ThreadID:       threadID.String(),
		Message:        frame,
	})
}

// NotifyUser pushes a frame to every live connection of userID.
func (h *Hub) NotifyUser(userID uuid.UUID, frame []byte) {
	h.deliverToUser(userID, frame)
	h.forward(clusterEnvelope{
		OriginInstance: h.opts.InstanceID,
		TargetUserID:   userID.String(),
		Message:        frame,
	})
}

// Send implements service.NotificationDelivery.
func (h *Hub) Send(userID uuid.UUID, notification model.Notification) {
	frame, err := relay.Encode(relay.TypeNotification, "", notification)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode notification", map[string]interface{}{"error": err.Error()})
		return
	}
	h.NotifyUser(userID, frame)
}

// Broadcast implements service.NotificationDelivery.
func (h *Hub) Broadcast(notification model.Notification) {
	frame, err := relay.Encode(relay.TypeNotification, "", notification)
	if err != nil {
		h.logger.Error("Hub", "Failed to encode notification", map[string]interface{}{"error": err.Error()})
		return
	}
	h.deliverToAll(frame)
	h.forward(clusterEnvelope{
		OriginInstance: h.opts.InstanceID,
		TargetUserID:   "*",
		Message:        frame,
	})
}

func (h *Hub) deliverToUser(userID uuid.UUID, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		h.deliver(c, frame)
	}
}

func (h *Hub) deliverToAll(frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conns := range h.clients {
		for c := range conns {
			h.deliver(c, frame)
		}
	}
}

func (h *Hub) deliverToRoom(threadID uuid.UUID, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[threadID] {
		h.deliver(c, frame)
	}
}

// deliver must be called with h.mu held. A full buffer drops the frame.
func (h *Hub) deliver(c *Client, frame []byte) {
	select {
	case c.send <- frame:
	default:
		h.logger.Warn("Hub", "Client send buffer full, dropping frame", map[string]interface{}{
			"user_id": c.UserID,
			"conn_id": c.ID,
		})
	}
}

func (h *Hub) forward(env clusterEnvelope) {
	if h.rdb == nil {
		return
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return
	}
	if err := h.rdb.Publish(context.Background(), h.opts.RedisChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, h.opts.RedisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleClusterMessage([]byte(msg.Payload))
		}
	}
}

func (h *Hub) handleClusterMessage(data []byte) {
	var env clusterEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	// Local fan-out already happened on the origin instance.
	if env.OriginInstance == h.opts.InstanceID {
		return
	}

	switch {
	case env.ThreadID != "":
		threadID, err := uuid.Parse(env.ThreadID)
		if err != nil {
			return
		}
		h.deliverToRoom(threadID, env.Message)
	case env.TargetUserID == "*":
		h.deliverToAll(env.Message)
	case env.TargetUserID != "":
		userID, err := uuid.Parse(env.TargetUserID)
		if err != nil {
			return
		}
		h.deliverToUser(userID, env.Message)
	}
}
