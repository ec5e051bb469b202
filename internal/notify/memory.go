package notify

import "sync"

// Memory keeps the whole stream in order, for the TUI log pane and tests
type Memory struct {
	mu      sync.Mutex
	entries []Notification
	limit   int
}

// NewMemory creates an in-memory backend. limit <= 0 keeps everything.
func NewMemory(limit int) *Memory {
	return &Memory{limit: limit}
}

func (m *Memory) Notify(notification Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, notification)
	if m.limit > 0 && len(m.entries) > m.limit {
		m.entries = m.entries[len(m.entries)-m.limit:]
	}
	return nil
}

func (m *Memory) Close() error {
	return nil
}

// Entries returns a copy of the stored stream
func (m *Memory) Entries() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Notification, len(m.entries))
	copy(out, m.entries)
	return out
}

// Last returns the most recent entry
func (m *Memory) Last() (Notification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return Notification{}, false
	}
	return m.entries[len(m.entries)-1], true
}
