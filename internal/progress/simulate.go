package progress

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Simulated progress: percentages synthesized on a timer, not reported by the server.
// Swapping these for real progress events does not touch the workflow.

// Stage is one labelled step of a staged simulation
type Stage struct {
	Label   string
	Percent float64
}

// GenerationStages are the cosmetic steps shown after a global report is produced
var GenerationStages = []Stage{
	{Label: "Loading data...", Percent: 30},
	{Label: "Analyzing metrics...", Percent: 50},
	{Label: "Building charts...", Percent: 70},
	{Label: "Rendering HTML report...", Percent: 90},
	{Label: "Report complete", Percent: 100},
}

// RunStages walks the stages with interval between consecutive stages.
// It returns ctx.Err() if cancelled before the last stage.
func RunStages(ctx context.Context, r *Reporter, ch Channel, stages []Stage, interval time.Duration) error {
	for i, stage := range stages {
		if i > 0 && interval > 0 {
			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		r.Set(ch, stage.Label, stage.Percent)
	}
	return nil
}

// RandomConfig tunes the random-increment animation
type RandomConfig struct {
	Tick         time.Duration
	MaxIncrement float64
	Cap          float64
	// Rand returns a value in [0, 1); defaults to math/rand
	Rand func() float64
}

// Animation is a running random-increment simulation
type Animation struct {
	reporter *Reporter
	channel  Channel
	run      uint64
	cancel   context.CancelFunc
	done     chan struct{}
	once     sync.Once
}

// StartRandom starts a new run on ch and advances it by random increments
// every tick until cfg.Cap is reached, ctx is cancelled, or Stop/Finish is called
func StartRandom(ctx context.Context, r *Reporter, ch Channel, label string, cfg RandomConfig) *Animation {
	if cfg.Rand == nil {
		cfg.Rand = rand.Float64
	}
	if cfg.Tick <= 0 {
		cfg.Tick = 200 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(ctx)
	a := &Animation{
		reporter: r,
		channel:  ch,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	a.run = r.Start(ch, label, 0)

	go func() {
		defer close(a.done)
		ticker := time.NewTicker(cfg.Tick)
		defer ticker.Stop()

		width := 0.0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				width += cfg.Rand() * cfg.MaxIncrement
				if width >= cfg.Cap {
					r.SetRun(ch, a.run, label, cfg.Cap)
					return
				}
				r.SetRun(ch, a.run, label, width)
			}
		}
	}()

	return a
}

// Stop cancels the ticker and waits for it to exit
func (a *Animation) Stop() {
	a.once.Do(a.cancel)
	<-a.done
}

// Finish stops the animation and snaps the channel to 100%
func (a *Animation) Finish(label string) {
	a.Stop()
	a.reporter.SetRun(a.channel, a.run, label, 100)
}

// Run is the reporter run the animation started
func (a *Animation) Run() uint64 {
	return a.run
}

// Done is closed once the animation goroutine has exited
func (a *Animation) Done() <-chan struct{} {
	return a.done
}
