package notify

import "fmt"

// Info appends an informational entry
func (m *Manager) Info(format string, args ...any) {
	m.log(LevelInfo, format, args...)
}

// Success appends a success entry
func (m *Manager) Success(format string, args ...any) {
	m.log(LevelSuccess, format, args...)
}

// Warning appends a warning entry
func (m *Manager) Warning(format string, args ...any) {
	m.log(LevelWarning, format, args...)
}

// Error appends an error entry
func (m *Manager) Error(format string, args ...any) {
	m.log(LevelError, format, args...)
}

// Backend failures are not surfaced: the stream must stay usable after any single failure.
func (m *Manager) log(level Level, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	_ = m.Notify(Notification{Level: level, Message: msg})
}
