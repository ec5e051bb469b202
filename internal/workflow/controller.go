package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/gabe/rcbt/internal/client"
	"github.com/gabe/rcbt/internal/config"
	"github.com/gabe/rcbt/internal/models"
	"github.com/gabe/rcbt/internal/progress"
	"github.com/gabe/rcbt/internal/validator"
)

// API is the part of the report server the workflow drives. *client.Client implements it.
type API interface {
	Upload(ctx context.Context, sel models.Selection) (models.UploadedFileSet, error)
	GenerateReport(ctx context.Context, files models.UploadedFileSet) (*client.GenerateResult, error)
	AvailableData(ctx context.Context, files models.UploadedFileSet) (*models.AvailableData, error)
	GenerateIndividual(ctx context.Context, files models.UploadedFileSet, kind models.TargetType, target string) (string, error)
	CheckSession(ctx context.Context) (*client.SessionData, error)
	URL(path string) string
	DownloadURL(reportPath string) string
}

// Renderer is the view side of the workflow: console output or the TUI
type Renderer interface {
	progress.Sink
	StateChanged(snap Snapshot)
	ReportReady(reportPath string, metrics models.Metrics)
	ValidationRequired(detour models.Detour, url string)
	Targets(kind models.TargetType, targets []string, placeholder string)
	OpenReport(url string)
}

// EventLog is the user-facing event stream. *notify.Manager implements it.
type EventLog interface {
	Info(format string, args ...any)
	Success(format string, args ...any)
	Warning(format string, args ...any)
	Error(format string, args ...any)
}

// FlagStore exposes the validation-completed flag. *session.FlagStore implements it.
type FlagStore interface {
	Consume() (bool, error)
}

// Options tune the controller
type Options struct {
	DetourPolicy  string
	StageInterval time.Duration
	ClearDelay    time.Duration
	Random        progress.RandomConfig
}

// OptionsFromConfig builds Options from the loaded configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DetourPolicy:  cfg.Workflow.DetourPolicy,
		StageInterval: config.Duration(cfg.Workflow.StageInterval, 500*time.Millisecond),
		ClearDelay:    config.Duration(cfg.Workflow.ClearDelay, time.Second),
		Random: progress.RandomConfig{
			Tick:         config.Duration(cfg.Individual.Tick, 200*time.Millisecond),
			MaxIncrement: cfg.Individual.MaxIncrement,
			Cap:          cfg.Individual.Cap,
		},
	}
}

// Controller owns the workflow state. All global actions go through it;
// dispatching one while another runs fails with ErrBusy before any I/O.
type Controller struct {
	api       API
	render    Renderer
	log       EventLog
	flags     FlagStore
	validator *validator.Validator
	progress  *progress.Reporter
	opts      Options
	seq       *sequencer

	mu           sync.Mutex
	state        State
	files        models.UploadedFileSet
	reportPath   string
	available    *models.AvailableData
	detour       *models.Detour
	selectedType models.TargetType
	anim         *progress.Animation
	timers       map[progress.Channel]*time.Timer
}

// New creates a controller in the Idle state with no files
func New(api API, render Renderer, log EventLog, flags FlagStore, v *validator.Validator, opts Options) *Controller {
	if opts.DetourPolicy == "" {
		opts.DetourPolicy = config.DetourHold
	}
	return &Controller{
		api:       api,
		render:    render,
		log:       log,
		flags:     flags,
		validator: v,
		progress:  progress.NewReporter(render),
		opts:      opts,
		seq:       newSequencer(),
		timers:    make(map[progress.Channel]*time.Timer),
	}
}

// Progress returns the reporter driving both progress channels
func (c *Controller) Progress() *progress.Reporter {
	return c.progress
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// InProgress reports whether a global action is running
func (c *Controller) InProgress() bool {
	return c.State().InProgress()
}

// Snapshot returns a copy of the observable state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Files returns the uploaded file set (nil when absent)
func (c *Controller) Files() models.UploadedFileSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.files.Clone()
}

// ReportPath returns the path of the most recent global report
func (c *Controller) ReportPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reportPath
}

// Available returns the selectable targets, nil until loaded
func (c *Controller) Available() *models.AvailableData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available
}

// IndividualVisible reports whether the individual-reports section is shown
func (c *Controller) IndividualVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.individualVisibleLocked()
}

// Close stops the individual animation and pending progress cleanups
func (c *Controller) Close() {
	c.mu.Lock()
	anim := c.anim
	c.anim = nil
	for ch, t := range c.timers {
		t.Stop()
		delete(c.timers, ch)
	}
	c.mu.Unlock()

	if anim != nil {
		anim.Stop()
	}
}

// Outside Uploading/Generating/AwaitingValidation the section follows AvailableData
func (c *Controller) individualVisibleLocked() bool {
	return c.state == Idle && c.available != nil
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:             c.state,
		Files:             c.files.Clone(),
		ReportPath:        c.reportPath,
		Available:         c.available,
		Detour:            c.detour,
		IndividualVisible: c.individualVisibleLocked(),
		CanUpload:         !c.state.InProgress(),
		CanGenerate:       !c.state.InProgress() && c.files.Complete(),
	}
}

// update applies fn under the lock and renders the resulting snapshot
func (c *Controller) update(fn func()) Snapshot {
	c.mu.Lock()
	fn()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.render.StateChanged(snap)
	return snap
}

// begin moves Idle or AwaitingValidation to an in-progress state
func (c *Controller) begin(next State) (State, error) {
	c.mu.Lock()
	prev := c.state
	if prev.InProgress() {
		c.mu.Unlock()
		return prev, ErrBusy
	}
	c.state = next
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.render.StateChanged(snap)
	c.log.Info("Global workflow started - individual reports hidden")
	return prev, nil
}

// end returns to Idle; the individual section follows AvailableData again
func (c *Controller) end() {
	c.update(func() {
		c.state = Idle
	})
	c.log.Success("Global workflow finished - individual reports available")
}

// clearLater hides the channel after the cosmetic delay unless a newer run started
func (c *Controller) clearLater(ch progress.Channel, run uint64, delay time.Duration) {
	if delay <= 0 {
		c.progress.ClearRun(ch, run)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.timers[ch]; ok {
		t.Stop()
	}
	c.timers[ch] = time.AfterFunc(delay, func() {
		c.progress.ClearRun(ch, run)
	})
}
