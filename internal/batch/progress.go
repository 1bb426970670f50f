package batch

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
)

// Step names surfaced to progress consumers.
const (
	StepIdle       = "idle"
	StepCounting   = "counting"
	StepProcessing = "processing"
	StepDone       = "done"
)

// Progress is the orchestrator's externally readable state. Counters are
// updated atomically so concurrent workers never produce a torn read, and
// the percentage is monotonic: a poller can never observe it go backwards.
type Progress struct {
	expected  atomic.Uint64
	processed atomic.Uint64
	failed    atomic.Uint64
	percentBP atomic.Uint64 // basis points, 0..10000

	mu      sync.Mutex
	step    string
	started time.Time
	clock   quartz.Clock
}

// Snapshot is one consistent, immutable progress reading.
type Snapshot struct {
	Percent        float64       `json:"percent"`
	CurrentStep    string        `json:"current_step"`
	HandsProcessed uint64        `json:"hands_processed"`
	HandsFailed    uint64        `json:"hands_failed"`
	HandsExpected  uint64        `json:"hands_expected"`
	Elapsed        time.Duration `json:"elapsed"`
}

// NewProgress creates a progress tracker. A nil clock uses real time.
func NewProgress(clock quartz.Clock) *Progress {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Progress{step: StepIdle, clock: clock}
}

func (p *Progress) begin(step string, expected uint64) {
	p.mu.Lock()
	p.step = step
	if p.started.IsZero() {
		p.started = p.clock.Now()
	}
	p.mu.Unlock()
	p.expected.Store(expected)
}

func (p *Progress) setStep(step string) {
	p.mu.Lock()
	p.step = step
	p.mu.Unlock()
}

// handDone records one hand leaving the pipeline, failed or not.
func (p *Progress) handDone(failed bool) {
	p.processed.Add(1)
	if failed {
		p.failed.Add(1)
	}
	p.advancePercent()
}

// advancePercent raises the monotonic percentage to match the processed
// count. The CAS loop only ever moves the value up, so interleaved
// workers cannot publish a decrease.
func (p *Progress) advancePercent() {
	expected := p.expected.Load()
	if expected == 0 {
		return
	}
	bp := p.processed.Load() * 10000 / expected
	if bp > 10000 {
		bp = 10000
	}
	for {
		cur := p.percentBP.Load()
		if bp <= cur {
			return
		}
		if p.percentBP.CompareAndSwap(cur, bp) {
			return
		}
	}
}

func (p *Progress) finish() {
	p.setStep(StepDone)
	p.percentBP.Store(10000)
}

// Read returns the current snapshot.
func (p *Progress) Read() Snapshot {
	p.mu.Lock()
	step := p.step
	started := p.started
	now := p.clock.Now()
	p.mu.Unlock()

	var elapsed time.Duration
	if !started.IsZero() {
		elapsed = now.Sub(started)
	}
	return Snapshot{
		Percent:        float64(p.percentBP.Load()) / 100,
		CurrentStep:    step,
		HandsProcessed: p.processed.Load(),
		HandsFailed:    p.failed.Load(),
		HandsExpected:  p.expected.Load(),
		Elapsed:        elapsed,
	}
}
