package notify

import (
	"sync"
	"time"
)

// Level is the severity of an event in the user-facing stream
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Icon returns the glyph shown in front of an entry
func (l Level) Icon() string {
	switch l {
	case LevelSuccess:
		return "✅"
	case LevelError:
		return "❌"
	case LevelWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

// Notification is one entry of the append-only event stream
type Notification struct {
	Level     Level
	Message   string
	Timestamp time.Time
	Data      map[string]interface{} // Optional metadata
}

// Notifier is the interface for notification backends
type Notifier interface {
	// Notify delivers a notification
	Notify(notification Notification) error
	// Close cleans up resources
	Close() error
}

// Func adapts a plain function to the Notifier interface
type Func func(Notification) error

func (f Func) Notify(n Notification) error { return f(n) }
func (f Func) Close() error                { return nil }

// Manager fans notifications out to multiple backends
type Manager struct {
	mu        sync.RWMutex
	notifiers []Notifier
	now       func() time.Time
}

// NewManager creates a new notification manager
func NewManager(notifiers ...Notifier) *Manager {
	return &Manager{
		notifiers: notifiers,
		now:       time.Now,
	}
}

// Add registers another backend
func (m *Manager) Add(n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifiers = append(m.notifiers, n)
}

// Notify sends a notification to all registered backends
func (m *Manager) Notify(notification Notification) error {
	if notification.Timestamp.IsZero() {
		notification.Timestamp = m.now()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Notify(notification); err != nil {
			lastErr = err
			// Continue to other notifiers even if one fails
		}
	}
	return lastErr
}

// Close closes all notifiers
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
