package stats

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"handtracker/internal/hand"
)

// Compute runs a full single-pass computation over the hand set.
func Compute(hands []hand.Hand, filter Filter) (*Counters, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	c := NewCounters()
	for i := range hands {
		if filter.Match(&hands[i]) {
			c.Add(&hands[i])
		}
	}
	return c, nil
}

// Fold adds a delta batch of newly accepted hands into retained counters.
// This is the incremental path: cost is proportional to the delta, never
// to the history behind the counters.
func Fold(counters *Counters, delta []hand.Hand, filter Filter) error {
	if err := filter.Validate(); err != nil {
		return err
	}
	if err := counters.Validate(); err != nil {
		return err
	}
	for i := range delta {
		if filter.Match(&delta[i]) {
			counters.Add(&delta[i])
		}
	}
	return nil
}

// ComputeParallel partitions the hand set, folds each partition's counters
// on its own goroutine and merges the results. Because the fold is
// associative and commutative the partition boundaries cannot affect the
// outcome, so this is byte-for-byte interchangeable with Compute.
func ComputeParallel(ctx context.Context, hands []hand.Hand, filter Filter, workers int) (*Counters, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(hands) {
		workers = len(hands)
	}
	if workers <= 1 {
		return Compute(hands, filter)
	}

	parts := make([]*Counters, workers)
	chunk := (len(hands) + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(hands) {
			end = len(hands)
		}
		part := hands[start:end]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := NewCounters()
			for i := range part {
				if filter.Match(&part[i]) {
					c.Add(&part[i])
				}
			}
			parts[w] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := NewCounters()
	for _, part := range parts {
		total.Merge(part)
	}
	return total, nil
}
