package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#56b6c2"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E22E"))
	warningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FD971F"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F92672"))
)

// TerminalNotifier prints each entry as one styled line
type TerminalNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTerminalNotifier creates a terminal notifier writing to out
func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	return &TerminalNotifier{out: out}
}

// Notify writes "[15:04:05] <icon> message"
func (t *TerminalNotifier) Notify(notification Notification) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := fmt.Fprintf(t.out, "%s %s\n",
		timestampStyle.Render("["+notification.Timestamp.Format("15:04:05")+"]"),
		styleFor(notification.Level).Render(notification.Level.Icon()+" "+notification.Message))
	return err
}

// Close is a no-op for the terminal notifier
func (t *TerminalNotifier) Close() error {
	return nil
}

func styleFor(level Level) lipgloss.Style {
	switch level {
	case LevelSuccess:
		return successStyle
	case LevelWarning:
		return warningStyle
	case LevelError:
		return errorStyle
	default:
		return infoStyle
	}
}
