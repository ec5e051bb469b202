package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gabe/rcbt/internal/client"
	"github.com/gabe/rcbt/internal/config"
	"github.com/gabe/rcbt/internal/models"
	"github.com/gabe/rcbt/internal/validator"
	"github.com/gabe/rcbt/internal/workflow"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoSpec        = errors.New("schedule.spec is empty")
	ErrUnknownSlot   = errors.New("unknown file slot in schedule.files")
	ErrMissingSlot   = errors.New("schedule.files is missing a slot")
	ErrAlreadyActive = errors.New("scheduler already started")
)

// Workflow is the part of the controller a scheduled run drives
type Workflow interface {
	Upload(ctx context.Context, sel models.Selection) (models.UploadedFileSet, error)
	Generate(ctx context.Context) (*client.GenerateResult, error)
}

// Scheduler runs upload then generate on a cron spec
type Scheduler struct {
	engine  *cron.Cron
	wf      Workflow
	spec    string
	files   map[models.FileSlot]string
	timeout time.Duration
	log     *logrus.Entry

	mu      sync.Mutex
	started bool
	runs    int
}

// New checks the schedule section and builds a stopped scheduler
func New(wf Workflow, cfg config.ScheduleConfig, timeout time.Duration, log *logrus.Logger) (*Scheduler, error) {
	if cfg.Spec == "" {
		return nil, ErrNoSpec
	}
	files := make(map[models.FileSlot]string, len(cfg.Files))
	for name, path := range cfg.Files {
		slot, ok := models.ParseSlot(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSlot, name)
		}
		files[slot] = path
	}
	for _, slot := range models.Slots {
		if files[slot] == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingSlot, slot.FieldName())
		}
	}
	if timeout <= 0 {
		timeout = 15 * time.Minute
	}
	return &Scheduler{
		engine:  cron.New(cron.WithLocation(time.Local)),
		wf:      wf,
		spec:    cfg.Spec,
		files:   files,
		timeout: timeout,
		log:     log.WithField("component", "scheduler"),
	}, nil
}

// Start registers the job and starts the cron engine
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyActive
	}

	if _, err := s.engine.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_ = s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("invalid schedule spec %q: %w", s.spec, err)
	}

	s.engine.Start()
	s.started = true
	s.log.WithField("spec", s.spec).Info("scheduler started")
	return nil
}

// Stop waits for a running job to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()
	if !started {
		return
	}

	s.log.Info("stopping scheduler")
	<-s.engine.Stop().Done()
	s.log.Info("scheduler stopped")
}

// Next returns the time of the next scheduled run
func (s *Scheduler) Next() time.Time {
	entries := s.engine.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Runs counts the runs whose files were uploaded
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// RunOnce performs one upload+generate cycle. A busy workflow skips the tick.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	sel := models.Selection{}
	for _, slot := range models.Slots {
		f, err := validator.Describe(s.files[slot])
		if err != nil {
			s.log.WithError(err).WithField("slot", slot.FieldName()).Error("scheduled run skipped")
			return err
		}
		sel[slot] = f
	}

	if _, err := s.wf.Upload(ctx, sel); err != nil {
		return s.failed("upload", err)
	}
	s.mu.Lock()
	s.runs++
	s.mu.Unlock()

	res, err := s.wf.Generate(ctx)
	if err != nil {
		return s.failed("generate", err)
	}
	if res.Detour != nil {
		s.log.WithField("inconsistencies", res.Detour.Inconsistencies).Warn("scheduled report needs validation")
		return nil
	}
	s.log.WithField("report", res.ReportPath).Info("scheduled report generated")
	return nil
}

func (s *Scheduler) failed(step string, err error) error {
	if errors.Is(err, workflow.ErrBusy) {
		s.log.WithField("step", step).Warn("workflow busy, scheduled run skipped")
	} else {
		s.log.WithError(err).WithField("step", step).Error("scheduled run failed")
	}
	return err
}
