package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gabe/rcbt/internal/history"
	"github.com/gabe/rcbt/internal/models"
	"github.com/gabe/rcbt/internal/notify"
	"github.com/gabe/rcbt/internal/progress"
	"github.com/gabe/rcbt/internal/workflow"
)

// Messages delivered from the workflow to the model
type (
	stateMsg    struct{ snap workflow.Snapshot }
	progressMsg struct{ update progress.Update }
	reportMsg   struct {
		path    string
		metrics models.Metrics
	}
	detourMsg struct {
		detour models.Detour
		url    string
	}
	targetsMsg struct {
		kind        models.TargetType
		targets     []string
		placeholder string
	}
	openMsg    struct{ url string }
	historyMsg struct{ rows []history.Row }
	eventMsg   struct{ n notify.Notification }
)

// bridgeBuffer bounds the progress frames queued before the program drains them
const bridgeBuffer = 1024

// Bridge turns renderer, history view and notifier calls into tea messages.
// Calls never block on the program, so they are safe from inside Update.
// Only progress frames are dropped when the program falls behind.
type Bridge struct {
	mu      sync.Mutex
	pending []tea.Msg
	frames  int
	wake    chan struct{}
	closed  bool
	started bool
}

// NewBridge creates a bridge; messages queue up until Attach
func NewBridge() *Bridge {
	return &Bridge{wake: make(chan struct{}, 1)}
}

// Attach forwards queued and future messages to p, in order
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	go func() {
		for range b.wake {
			b.mu.Lock()
			batch := b.pending
			b.pending = nil
			b.frames = 0
			b.mu.Unlock()

			for _, msg := range batch {
				send(msg)
			}
		}
	}()
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if _, ok := msg.(progressMsg); ok {
		if b.frames >= bridgeBuffer {
			return
		}
		b.frames++
	}
	b.pending = append(b.pending, msg)
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bridge) Progress(u progress.Update) { b.send(progressMsg{update: u}) }

func (b *Bridge) StateChanged(snap workflow.Snapshot) { b.send(stateMsg{snap: snap}) }

func (b *Bridge) ReportReady(path string, metrics models.Metrics) {
	b.send(reportMsg{path: path, metrics: metrics})
}

func (b *Bridge) ValidationRequired(detour models.Detour, url string) {
	b.send(detourMsg{detour: detour, url: url})
}

func (b *Bridge) Targets(kind models.TargetType, targets []string, placeholder string) {
	b.send(targetsMsg{kind: kind, targets: targets, placeholder: placeholder})
}

func (b *Bridge) OpenReport(url string) { b.send(openMsg{url: url}) }

func (b *Bridge) History(rows []history.Row) { b.send(historyMsg{rows: rows}) }

func (b *Bridge) Notify(n notify.Notification) error {
	b.send(eventMsg{n: n})
	return nil
}

// Close stops forwarding; later calls are dropped
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.wake)
	}
	return nil
}
