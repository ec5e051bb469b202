package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gabe/rcbt/internal/logger"
	"github.com/gabe/rcbt/internal/session"
)

var startProgram = func(p *tea.Program) error {
	_, err := p.Run()
	return err
}

// Run starts the dashboard and blocks until it exits. When flags is not nil
// the validation-completed flag is watched and triggers a session recovery.
func Run(ctx context.Context, deps Deps, flags *session.FlagStore) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(ctx, deps)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	deps.Bridge.Attach(p.Send)

	if flags != nil {
		ch, err := flags.Watch(ctx)
		if err != nil {
			logger.Log.WithError(err).Warn("validation flag watch disabled")
		} else {
			go deps.Controller.WatchValidation(ctx, ch)
		}
	}

	err := startProgram(p)
	deps.Controller.Close()
	deps.Bridge.Close()
	return err
}
