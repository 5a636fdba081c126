package whiteboard

import (
	"strings"
	"sync"
)

// DefaultChatLimit is how many messages a ChatLog keeps unless told
// otherwise.
const DefaultChatLimit = 50

// ChatLog keeps the most recent chat messages of a board. It is safe for
// concurrent use.
type ChatLog struct {
	mu    sync.Mutex
	limit int
	msgs  []ChatMessage
}

// NewChatLog returns an empty log holding at most limit messages. A
// non-positive limit means DefaultChatLimit.
func NewChatLog(limit int) *ChatLog {
	if limit <= 0 {
		limit = DefaultChatLimit
	}
	return &ChatLog{limit: limit}
}

// Add appends m, dropping the oldest messages past the limit. Blank
// messages are ignored and reported as not added.
func (l *ChatLog) Add(m ChatMessage) bool {
	if strings.TrimSpace(m.Message) == "" {
		return false
	}
	if m.User == "" {
		m.User = DefaultUser
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, m)
	if over := len(l.msgs) - l.limit; over > 0 {
		l.msgs = append(l.msgs[:0], l.msgs[over:]...)
	}
	return true
}

// Messages returns a copy of the log, oldest first.
func (l *ChatLog) Messages() []ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ChatMessage, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// Lines renders the log as "user: message" lines, oldest first.
func (l *ChatLog) Lines() []string {
	msgs := l.Messages()
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = m.String()
	}
	return lines
}

// Len returns the number of messages held.
func (l *ChatLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.msgs)
}

// Reset empties the log.
func (l *ChatLog) Reset() {
	l.mu.Lock()
	l.msgs = nil
	l.mu.Unlock()
}
