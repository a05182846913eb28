package relay

import (
	"sync"
	"time"
)

const DefaultTypingDelay = time.Second

// TypingSetter is satisfied by *Manager.
type TypingSetter interface {
	SetTyping(threadID string, isTyping bool) error
}

// TypingDebouncer turns a stream of keystrokes into one typing=true and one
// typing=false after the input goes quiet.
type TypingDebouncer struct {
	setter   TypingSetter
	threadID string
	delay    time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	typing bool
}

func NewTypingDebouncer(setter TypingSetter, threadID string, delay time.Duration) *TypingDebouncer {
	if delay <= 0 {
		delay = DefaultTypingDelay
	}
	return &TypingDebouncer{setter: setter, threadID: threadID, delay: delay}
}

func (d *TypingDebouncer) Keystroke() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.typing {
		d.typing = true
		_ = d.setter.SetTyping(d.threadID, true)
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.quiet)
}

func (d *TypingDebouncer) quiet() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.typing {
		return
	}
	d.typing = false
	d.timer = nil
	_ = d.setter.SetTyping(d.threadID, false)
}

// Stop flushes typing=false right away, e.g. when the message is sent.
func (d *TypingDebouncer) Stop() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.quiet()
}
