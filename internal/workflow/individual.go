package workflow

import (
	"context"
	"time"

	"github.com/gabe/rcbt/internal/models"
	"github.com/gabe/rcbt/internal/progress"
)

// TargetPlaceholder is shown in place of targets until a report type is chosen
const TargetPlaceholder = "choose a type first"

// individualClearDelay keeps the finished individual bar on screen briefly
const individualClearDelay = 500 * time.Millisecond

// LoadTargets fetches the sites and collaborators for individual reports.
// It does nothing while no file set is held.
func (c *Controller) LoadTargets(ctx context.Context) (*models.AvailableData, error) {
	c.mu.Lock()
	files := c.files.Clone()
	if files.Empty() {
		c.mu.Unlock()
		return nil, nil
	}
	n := c.seq.next(opTargets)
	c.mu.Unlock()

	data, err := c.api.AvailableData(ctx, files)

	c.mu.Lock()
	if !c.seq.current(opTargets, n) {
		c.mu.Unlock()
		return nil, ErrStale
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Error("Failed to load available data: %v", err)
		return nil, err
	}

	var kind models.TargetType
	c.update(func() {
		c.available = data
		kind = c.selectedType
	})
	c.log.Success("Available data loaded for individual reports")

	// Keep the target list in step with the reloaded data
	if kind != "" {
		c.SelectType(kind)
	}
	return data, nil
}

// SelectType repopulates the target list for the chosen report type. An
// empty type, or no data yet, yields the placeholder state.
func (c *Controller) SelectType(kind models.TargetType) []string {
	c.mu.Lock()
	c.selectedType = kind
	data := c.available
	c.mu.Unlock()

	if kind == "" || data == nil {
		c.render.Targets(kind, nil, TargetPlaceholder)
		return nil
	}
	targets := data.Targets(kind)
	c.render.Targets(kind, targets, "")
	return targets
}

// GenerateIndividual generates a report filtered to one site or collaborator,
// opens it and reloads the targets. Progress is a random-increment animation.
func (c *Controller) GenerateIndividual(ctx context.Context, kind models.TargetType, target string) (string, error) {
	if kind == "" || target == "" {
		c.log.Error("Please select the report type and target")
		return "", ErrNoTarget
	}

	c.mu.Lock()
	if c.state.InProgress() {
		c.mu.Unlock()
		return "", ErrBusy
	}
	if !c.individualVisibleLocked() {
		c.mu.Unlock()
		c.log.Error("Individual reports are not available yet")
		return "", ErrIndividualHidden
	}
	files := c.files.Clone()
	n := c.seq.next(opIndividual)
	prev := c.anim
	c.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
	anim := progress.StartRandom(ctx, c.progress, progress.Individual, "Generating...", c.opts.Random)
	c.mu.Lock()
	c.anim = anim
	c.mu.Unlock()

	c.log.Info("Generating individual report: %s - %s", kind, target)

	path, err := c.api.GenerateIndividual(ctx, files, kind, target)

	c.mu.Lock()
	stale := !c.seq.current(opIndividual, n)
	if c.anim == anim {
		c.anim = nil
	}
	c.mu.Unlock()

	if stale {
		anim.Stop()
		return "", ErrStale
	}

	if err != nil {
		anim.Stop()
		c.log.Error("Individual report generation failed: %v", err)
		c.progress.ClearRun(progress.Individual, anim.Run())
		return "", err
	}

	c.log.Success("Individual report generated: %s", path)
	anim.Finish("Report ready")
	c.clearLater(progress.Individual, anim.Run(), individualClearDelay)

	c.render.OpenReport(c.api.DownloadURL(path))

	_, _ = c.LoadTargets(ctx)
	return path, nil
}
