package batch

import (
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
)

func TestProgressLifecycle(t *testing.T) {
	t.Parallel()

	mock := quartz.NewMock(t)
	p := NewProgress(mock)

	snap := p.Read()
	if snap.CurrentStep != StepIdle {
		t.Errorf("initial step = %q, want idle", snap.CurrentStep)
	}
	if snap.Elapsed != 0 {
		t.Errorf("elapsed before start = %v", snap.Elapsed)
	}

	p.begin(StepProcessing, 4)
	mock.Advance(3 * time.Second)

	p.handDone(false)
	p.handDone(true)

	snap = p.Read()
	if snap.HandsProcessed != 2 || snap.HandsFailed != 1 {
		t.Errorf("processed=%d failed=%d, want 2/1", snap.HandsProcessed, snap.HandsFailed)
	}
	if snap.Percent != 50 {
		t.Errorf("percent = %v, want 50", snap.Percent)
	}
	if snap.Elapsed != 3*time.Second {
		t.Errorf("elapsed = %v, want 3s", snap.Elapsed)
	}

	p.handDone(false)
	p.handDone(false)
	p.finish()
	snap = p.Read()
	if snap.CurrentStep != StepDone || snap.Percent != 100 {
		t.Errorf("final snapshot %+v", snap)
	}
}

// A reader polling during concurrent updates must never observe the
// percentage move backwards.
func TestProgressMonotonicUnderConcurrency(t *testing.T) {
	t.Parallel()

	p := NewProgress(nil)
	p.begin(StepProcessing, 1000)

	done := make(chan struct{})
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 125; i++ {
				p.handDone(i%10 == 0)
			}
		}()
	}

	var violations int
	go func() {
		defer close(done)
		last := -1.0
		for i := 0; i < 10000; i++ {
			cur := p.Read().Percent
			if cur < last {
				violations++
			}
			last = cur
		}
	}()

	wg.Wait()
	<-done
	if violations > 0 {
		t.Fatalf("observed %d backwards moves", violations)
	}

	snap := p.Read()
	if snap.HandsProcessed != 1000 {
		t.Errorf("processed = %d, want 1000", snap.HandsProcessed)
	}
	if snap.Percent != 100 {
		t.Errorf("percent = %v, want 100", snap.Percent)
	}
}

func TestProgressPercentClamped(t *testing.T) {
	t.Parallel()

	// The pre-count is an estimate; processing more hands than expected
	// must cap at 100, not overflow it.
	p := NewProgress(nil)
	p.begin(StepProcessing, 2)
	for i := 0; i < 5; i++ {
		p.handDone(false)
	}
	if got := p.Read().Percent; got != 100 {
		t.Errorf("percent = %v, want 100", got)
	}
}
