package progress

import "sync"

// Channel identifies an independent progress indicator
type Channel string

const (
	Global     Channel = "global"
	Individual Channel = "individual"
)

// Update is the observable state of one channel
type Update struct {
	Channel Channel
	Percent float64
	Label   string
	Visible bool
}

// Sink receives every change of a channel, typically the render layer
type Sink interface {
	Progress(update Update)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(Update)

func (f SinkFunc) Progress(u Update) { f(u) }

// Reporter tracks a 0-100 percentage and a label per channel.
// Within one run the percentage never goes down.
type Reporter struct {
	mu     sync.Mutex
	sink   Sink
	states map[Channel]Update
	runs   map[Channel]uint64
}

// NewReporter creates a reporter forwarding changes to sink (may be nil)
func NewReporter(sink Sink) *Reporter {
	return &Reporter{
		sink:   sink,
		states: make(map[Channel]Update),
		runs:   make(map[Channel]uint64),
	}
}

// Start begins a new run on the channel and returns its run id
func (r *Reporter) Start(ch Channel, label string, percent float64) uint64 {
	r.mu.Lock()
	r.runs[ch]++
	run := r.runs[ch]
	u := Update{Channel: ch, Percent: clamp(percent), Label: label, Visible: true}
	r.states[ch] = u
	r.mu.Unlock()

	r.emit(u)
	return run
}

// Set moves the current run forward. Lower percentages are ignored.
// It reports whether the update was applied.
func (r *Reporter) Set(ch Channel, label string, percent float64) bool {
	r.mu.Lock()
	cur := r.states[ch]
	percent = clamp(percent)
	if !cur.Visible || percent < cur.Percent {
		r.mu.Unlock()
		return false
	}
	u := Update{Channel: ch, Percent: percent, Label: label, Visible: true}
	r.states[ch] = u
	r.mu.Unlock()

	r.emit(u)
	return true
}

// SetRun is Set restricted to run, so a superseded run cannot move a newer one
func (r *Reporter) SetRun(ch Channel, run uint64, label string, percent float64) bool {
	r.mu.Lock()
	if r.runs[ch] != run {
		r.mu.Unlock()
		return false
	}
	r.mu.Unlock()
	return r.Set(ch, label, percent)
}

// Clear hides the channel and resets it to zero
func (r *Reporter) Clear(ch Channel) {
	r.mu.Lock()
	u := Update{Channel: ch}
	r.states[ch] = u
	r.mu.Unlock()

	r.emit(u)
}

// ClearRun clears the channel only if run is still the current one, so a
// delayed cleanup from an old run cannot hide a newer one
func (r *Reporter) ClearRun(ch Channel, run uint64) bool {
	r.mu.Lock()
	if r.runs[ch] != run {
		r.mu.Unlock()
		return false
	}
	u := Update{Channel: ch}
	r.states[ch] = u
	r.mu.Unlock()

	r.emit(u)
	return true
}

// Current returns the channel's state
func (r *Reporter) Current(ch Channel) Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.states[ch]
	u.Channel = ch
	return u
}

func (r *Reporter) emit(u Update) {
	if r.sink != nil {
		r.sink.Progress(u)
	}
}

func clamp(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
