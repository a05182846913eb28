package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/fasthttp/websocket"
)

const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultMaxAttempts      = 3
	DefaultInitialBackoff   = 500 * time.Millisecond
	DefaultMaxBackoff       = 5 * time.Second
	writeTimeout            = 10 * time.Second
)

var (
	ErrNotConnected = errors.New("relay: not connected")
	// ErrCircuitOpen is returned once MaxAttempts consecutive connection attempts failed.
	ErrCircuitOpen = errors.New("relay: connection failed too many times")
	ErrClosed      = errors.New("relay: manager closed")
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	// StateFailed is terminal until Connect is called again.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type MessageHandler func(threadID string, payload json.RawMessage)

type TypingHandler func(threadID string, typing TypingPayload)

type ErrorHandler func(threadID string, message string)

type Config struct {
	// URL of the relay endpoint, e.g. ws://localhost:3000/api/ws/chat
	URL   string
	Token string

	HandshakeTimeout time.Duration
	MaxAttempts      int
	InitialBackoff   time.Duration
	MaxBackoff       time.Duration
}

func (c Config) normalized() Config {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = DefaultInitialBackoff
	}
	if c.MaxBackoff < c.InitialBackoff {
		c.MaxBackoff = DefaultMaxBackoff
		if c.MaxBackoff < c.InitialBackoff {
			c.MaxBackoff = c.InitialBackoff
		}
	}
	return c
}

// Manager owns one relay connection, its retry state, the threads the caller
// wants to be in and the registered handlers. All of it is per instance.
type Manager struct {
	cfg     Config
	dialer  *websocket.Dialer
	backoff *backoff.ExponentialBackOff

	mu       sync.Mutex
	state    State
	conn     *websocket.Conn
	failures int
	closed   bool
	// joined is the desired room set, flushed on every Connected transition.
	joined map[string]struct{}

	nextID          uint64
	messageHandlers map[uint64]MessageHandler
	typingHandlers  map[uint64]TypingHandler
	errorHandlers   map[uint64]ErrorHandler
	joinedHandlers  map[uint64]func(threadID string)
	stateListeners  []func(State)

	writeMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager(cfg Config) *Manager {
	cfg = cfg.normalized()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialBackoff
	b.MaxInterval = cfg.MaxBackoff

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:             cfg,
		dialer:          &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		backoff:         b,
		state:           StateDisconnected,
		joined:          make(map[string]struct{}),
		messageHandlers: make(map[uint64]MessageHandler),
		typingHandlers:  make(map[uint64]TypingHandler),
		errorHandlers:   make(map[uint64]ErrorHandler),
		joinedHandlers:  make(map[uint64]func(threadID string)),
		ctx:             ctx,
		cancel:          cancel,
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnStateChange registers a listener called on every transition, outside the lock.
func (m *Manager) OnStateChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateListeners = append(m.stateListeners, fn)
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	if m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	listeners := append([]func(State){}, m.stateListeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}

// Connect dials the relay, retrying with backoff. After MaxAttempts consecutive
// failures the manager enters StateFailed and returns ErrCircuitOpen. Calling
// Connect again from StateFailed starts a fresh round of attempts.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	switch m.state {
	case StateConnected, StateConnecting, StateReconnecting:
		m.mu.Unlock()
		return nil
	case StateFailed:
		m.failures = 0
	}
	m.mu.Unlock()

	m.setState(StateConnecting)
	return m.dialLoop(ctx)
}

func (m *Manager) dialLoop(ctx context.Context) error {
	m.backoff.Reset()

	for {
		conn, err := m.dial(ctx)
		if err == nil {
			return m.onConnected(conn)
		}

		m.mu.Lock()
		m.failures++
		failures := m.failures
		closed := m.closed
		m.mu.Unlock()

		if closed {
			m.setState(StateDisconnected)
			return ErrClosed
		}
		if failures >= m.cfg.MaxAttempts {
			m.setState(StateFailed)
			return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}

		m.setState(StateReconnecting)
		select {
		case <-ctx.Done():
			m.setState(StateDisconnected)
			return ctx.Err()
		case <-m.ctx.Done():
			m.setState(StateDisconnected)
			return ErrClosed
		case <-time.After(m.backoff.NextBackOff()):
		}
	}
}

func (m *Manager) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if m.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+m.cfg.Token)
	}
	conn, resp, err := m.dialer.DialContext(ctx, m.cfg.URL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

func (m *Manager) onConnected(conn *websocket.Conn) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		conn.Close()
		return ErrClosed
	}
	m.conn = conn
	m.failures = 0
	threads := make([]string, 0, len(m.joined))
	for id := range m.joined {
		threads = append(threads, id)
	}
	m.mu.Unlock()

	m.backoff.Reset()
	m.setState(StateConnected)

	for _, id := range threads {
		_ = m.writeFrame(conn, TypeJoinThread, id, nil)
	}

	go m.readLoop(conn)
	return nil
}

// readLoop is the single reader of a connection; handlers run on it serially.
func (m *Manager) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.onDisconnected(conn)
			return
		}
		frame, err := Decode(data)
		if err != nil {
			continue
		}
		m.dispatch(frame)
	}
}

func (m *Manager) dispatch(frame Frame) {
	switch frame.Type {
	case TypeReceiveMessage:
		m.mu.Lock()
		handlers := make([]MessageHandler, 0, len(m.messageHandlers))
		for _, h := range m.messageHandlers {
			handlers = append(handlers, h)
		}
		m.mu.Unlock()
		for _, h := range handlers {
			h(frame.ThreadID, frame.Payload)
		}

	case TypeUserTyping:
		var typing TypingPayload
		if err := json.Unmarshal(frame.Payload, &typing); err != nil {
			return
		}
		m.mu.Lock()
		handlers := make([]TypingHandler, 0, len(m.typingHandlers))
		for _, h := range m.typingHandlers {
			handlers = append(handlers, h)
		}
		m.mu.Unlock()
		for _, h := range handlers {
			h(frame.ThreadID, typing)
		}

	case TypeJoined:
		m.mu.Lock()
		handlers := make([]func(string), 0, len(m.joinedHandlers))
		for _, h := range m.joinedHandlers {
			handlers = append(handlers, h)
		}
		m.mu.Unlock()
		for _, h := range handlers {
			h(frame.ThreadID)
		}

	case TypeError:
		var e ErrorPayload
		_ = json.Unmarshal(frame.Payload, &e)
		m.mu.Lock()
		handlers := make([]ErrorHandler, 0, len(m.errorHandlers))
		for _, h := range m.errorHandlers {
			handlers = append(handlers, h)
		}
		m.mu.Unlock()
		for _, h := range handlers {
			h(frame.ThreadID, e.Message)
		}
	}
}

func (m *Manager) onDisconnected(conn *websocket.Conn) {
	m.mu.Lock()
	if m.conn != conn {
		m.mu.Unlock()
		return
	}
	m.conn = nil
	closed := m.closed
	m.mu.Unlock()
	conn.Close()

	if closed {
		m.setState(StateDisconnected)
		return
	}

	// Unexpected drop: retry in the background with the same attempt budget.
	m.setState(StateReconnecting)
	go func() {
		_ = m.dialLoop(m.ctx)
	}()
}

// JoinThread records the thread and joins it now when connected, otherwise on
// the next Connected transition.
func (m *Manager) JoinThread(threadID string) error {
	m.mu.Lock()
	m.joined[threadID] = struct{}{}
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		return nil
	}
	return m.writeFrame(conn, TypeJoinThread, threadID, nil)
}

func (m *Manager) LeaveThread(threadID string) error {
	m.mu.Lock()
	delete(m.joined, threadID)
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		return nil
	}
	return m.writeFrame(conn, TypeLeaveThread, threadID, nil)
}

// Publish sends a message payload to the other members of threadID.
func (m *Manager) Publish(threadID string, payload interface{}) error {
	conn := m.currentConn()
	if conn == nil {
		return ErrNotConnected
	}
	return m.writeFrame(conn, TypeSendMessage, threadID, payload)
}

func (m *Manager) SetTyping(threadID string, isTyping bool) error {
	conn := m.currentConn()
	if conn == nil {
		return ErrNotConnected
	}
	return m.writeFrame(conn, TypeTyping, threadID, TypingPayload{IsTyping: isTyping})
}

// OnMessage registers h and returns its unsubscribe function.
func (m *Manager) OnMessage(h MessageHandler) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.messageHandlers[id] = h
	return func() {
		m.mu.Lock()
		delete(m.messageHandlers, id)
		m.mu.Unlock()
	}
}

func (m *Manager) OnTyping(h TypingHandler) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.typingHandlers[id] = h
	return func() {
		m.mu.Lock()
		delete(m.typingHandlers, id)
		m.mu.Unlock()
	}
}

func (m *Manager) OnError(h ErrorHandler) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.errorHandlers[id] = h
	return func() {
		m.mu.Lock()
		delete(m.errorHandlers, id)
		m.mu.Unlock()
	}
}

// OnJoined is called when the server confirms a join.
func (m *Manager) OnJoined(h func(threadID string)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.joinedHandlers[id] = h
	return func() {
		m.mu.Lock()
		delete(m.joinedHandlers, id)
		m.mu.Unlock()
	}
}

// Close stops reconnecting and closes the connection.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()

	m.cancel()
	if conn != nil {
		m.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		m.writeMu.Unlock()
		conn.Close()
	}
	m.setState(StateDisconnected)
	return nil
}

func (m *Manager) currentConn() *websocket.Conn {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConnected {
		return nil
	}
	return m.conn
}

func (m *Manager) writeFrame(conn *websocket.Conn, frameType, threadID string, payload interface{}) error {
	data, err := Encode(frameType, threadID, payload)
	if err != nil {
		return err
	}
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}
