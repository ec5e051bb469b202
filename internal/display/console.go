package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/gabe/rcbt/internal/history"
	"github.com/gabe/rcbt/internal/models"
	"github.com/gabe/rcbt/internal/progress"
	"github.com/gabe/rcbt/internal/workflow"
)

// Console renders the workflow for one-shot commands, one line per change
type Console struct {
	mu          sync.Mutex
	out         io.Writer
	openBrowser bool
	opener      func(url string) error
	last        map[progress.Channel]progress.Update
	visible     *bool
}

// NewConsole creates a console renderer. When openBrowser is false report
// URLs are printed instead of opened.
func NewConsole(out io.Writer, openBrowser bool) *Console {
	return &Console{
		out:         out,
		openBrowser: openBrowser,
		opener:      OpenURL,
		last:        make(map[progress.Channel]progress.Update),
	}
}

// Progress prints a bar whenever a channel moves or changes label
func (c *Console) Progress(u progress.Update) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.last[u.Channel]
	c.last[u.Channel] = u
	if !u.Visible {
		return
	}
	if prev.Visible && prev.Percent == u.Percent && prev.Label == u.Label {
		return
	}
	fmt.Fprintf(c.out, "%s %s %s\n",
		mutedStyle.Render(string(u.Channel)),
		successStyle.Render(ProgressBar(u.Percent, 20)),
		valueStyle.Render(u.Label))
}

// StateChanged reports when the individual-reports section appears or disappears
func (c *Console) StateChanged(snap workflow.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.visible != nil && *c.visible == snap.IndividualVisible {
		return
	}
	v := snap.IndividualVisible
	first := c.visible == nil
	c.visible = &v
	if first && !v {
		return
	}
	if v {
		fmt.Fprintln(c.out, mutedStyle.Render("Individual reports available (rcbt targets, rcbt individual)"))
	} else {
		fmt.Fprintln(c.out, mutedStyle.Render("Individual reports hidden"))
	}
}

func (c *Console) ReportReady(reportPath string, metrics models.Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, RenderMetrics(reportPath, metrics))
}

func (c *Console) ValidationRequired(detour models.Detour, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, RenderDetour(detour, url))
}

func (c *Console) Targets(kind models.TargetType, targets []string, placeholder string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, RenderTargets(kind, targets, placeholder))
}

// OpenReport opens url in the system browser, falling back to printing it
func (c *Console) OpenReport(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.openBrowser && c.opener != nil {
		if err := c.opener(url); err == nil {
			fmt.Fprintf(c.out, "%s %s\n", labelStyle.Render("Opened"), linkStyle.Render(url))
			return
		}
	}
	fmt.Fprintf(c.out, "%s %s\n", labelStyle.Render("Report:"), linkStyle.Render(url))
}

// History renders the history table
func (c *Console) History(rows []history.Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, RenderHistory(rows))
}
