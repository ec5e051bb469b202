package workflow

import (
	"context"

	"github.com/gabe/rcbt/internal/client"
	"github.com/gabe/rcbt/internal/config"
	"github.com/gabe/rcbt/internal/progress"
)

// Generate asks the server for the global report over the uploaded files.
//
// A validation detour is not an error: the result carries the Detour and
// the state follows the configured detour policy.
func (c *Controller) Generate(ctx context.Context) (*client.GenerateResult, error) {
	if _, err := c.begin(Generating); err != nil {
		return nil, err
	}

	c.mu.Lock()
	files := c.files.Clone()
	c.mu.Unlock()

	if !files.Complete() {
		c.log.Error("Please upload all files first")
		c.end()
		return nil, ErrIncompleteFiles
	}

	run := c.progress.Start(progress.Global, "Generating report...", 10)
	c.log.Info("Starting report generation")

	res, err := c.api.GenerateReport(ctx, files)

	if err != nil {
		c.log.Error("Report generation failed: %v", err)
		c.progress.ClearRun(progress.Global, run)
		c.end()
		return nil, err
	}

	if res.Detour != nil {
		c.detoured(res, run)
		return res, nil
	}

	c.update(func() {
		c.reportPath = res.ReportPath
		c.detour = nil
	})
	c.log.Success("Report generated successfully")

	if err := progress.RunStages(ctx, c.progress, progress.Global, progress.GenerationStages, c.opts.StageInterval); err != nil {
		last := progress.GenerationStages[len(progress.GenerationStages)-1]
		c.progress.Set(progress.Global, last.Label, last.Percent)
	}

	c.render.ReportReady(res.ReportPath, res.Metrics)
	c.log.Success("Results displayed successfully")

	// A failed target load is logged by LoadTargets and leaves the section hidden
	_, _ = c.LoadTargets(ctx)

	c.end()
	c.clearLater(progress.Global, run, c.opts.ClearDelay)
	return res, nil
}

// detoured handles the inconsistency-validation outcome. ReportPath and
// AvailableData are never touched here.
func (c *Controller) detoured(res *client.GenerateResult, run uint64) {
	d := *res.Detour
	c.progress.ClearRun(progress.Global, run)
	c.log.Warning("%d inconsistencies detected", d.Inconsistencies)
	c.render.ValidationRequired(d, c.api.URL(d.RedirectTo))

	if c.opts.DetourPolicy == config.DetourEnd {
		c.update(func() { c.detour = &d })
		c.end()
		return
	}
	c.update(func() {
		c.detour = &d
		c.state = AwaitingValidation
	})
	c.log.Info("Waiting for inconsistency validation at %s", c.api.URL(d.RedirectTo))
}

// OpenReport opens the most recent global report through the renderer
func (c *Controller) OpenReport() (string, error) {
	path := c.ReportPath()
	if path == "" {
		c.log.Error("No report to download")
		return "", ErrNoReport
	}
	url := c.api.DownloadURL(path)
	c.log.Info("Downloading report...")
	c.render.OpenReport(url)
	c.log.Success("Download started")
	return url, nil
}
