package workflow

import (
	"context"

	"github.com/gabe/rcbt/internal/logger"
	"github.com/gabe/rcbt/internal/models"
	"github.com/gabe/rcbt/internal/session"
)

// Recover restores the file set held by a live server session, without
// re-uploading. No session, or an unreachable server, is not an error.
//
// Returning from the validation detour (the completed flag is set) and a
// plain restart differ only in the logged message, except that the former
// also ends an AwaitingValidation hold.
func (c *Controller) Recover(ctx context.Context) (models.UploadedFileSet, error) {
	c.mu.Lock()
	if c.state.InProgress() {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	hadFiles := !c.files.Empty()
	n := c.seq.next(opSession)
	gen := c.seq.peek(opFiles)
	c.mu.Unlock()

	data, err := c.api.CheckSession(ctx)
	if err != nil {
		logger.Log.WithError(err).Debug("no session available")
		return nil, nil
	}

	if !data.HasFiles || !data.Files.Complete() {
		return nil, nil
	}

	// An upload dispatched after the session check owns the file set, even
	// if it has not answered yet
	c.mu.Lock()
	if !c.seq.current(opSession, n) || !c.seq.current(opFiles, gen) || c.state.InProgress() {
		c.mu.Unlock()
		return nil, ErrStale
	}
	c.files = data.Files.Clone()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.render.StateChanged(snap)

	validated := false
	if c.flags != nil {
		ok, err := c.flags.Consume()
		if err != nil {
			logger.Log.WithError(err).Warn("failed to consume validation flag")
		}
		validated = ok
	}
	if validated {
		c.update(func() {
			if c.state == AwaitingValidation {
				c.state = Idle
				c.detour = nil
			}
		})
	}

	switch {
	case validated:
		c.log.Success("Returned after validation - session restored automatically")
	case !hadFiles:
		c.log.Info("Session detected - data restored for individual reports")
	}

	_, _ = c.LoadTargets(ctx)
	return data.Files.Clone(), nil
}

// WatchValidation recovers each time the validation-completed flag is set,
// until flags is closed or ctx is done
func (c *Controller) WatchValidation(ctx context.Context, flags <-chan *session.Flag) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-flags:
			if !ok {
				return
			}
			if _, err := c.Recover(ctx); err != nil {
				logger.Log.WithError(err).Debug("recovery after validation skipped")
			}
		}
	}
}
