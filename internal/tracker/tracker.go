// Package tracker owns the full ingestion-to-statistics lifecycle for one
// user: it runs import batches, keeps the accepted hand history, and
// serves statistics snapshots through the cache, folding only new hands
// into cached counters instead of re-scanning history.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"handtracker/internal/analysis"
	"handtracker/internal/batch"
	"handtracker/internal/hand"
	"handtracker/internal/stats"
	"handtracker/internal/store"
	"handtracker/internal/validate"
)

// Tracker coordinates batches and statistics for a single user.
type Tracker struct {
	logger   zerolog.Logger
	user     string
	registry *validate.Registry
	store    store.SnapshotStore
	analyzer analysis.Analyzer
	workers  int

	mu      sync.RWMutex
	hands   []hand.Hand
	current *batch.Progress
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithAnalyzer attaches the commentary backend.
func WithAnalyzer(a analysis.Analyzer) Option {
	return func(t *Tracker) { t.analyzer = a }
}

// WithWorkers sets batch parallelism.
func WithWorkers(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.workers = n
		}
	}
}

// New creates a tracker for the user backed by the given snapshot store.
func New(logger zerolog.Logger, user string, snapshots store.SnapshotStore, opts ...Option) *Tracker {
	t := &Tracker{
		logger:   logger.With().Str("component", "tracker").Str("user", user).Logger(),
		user:     user,
		registry: validate.NewRegistry(),
		store:    snapshots,
		workers:  4,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Import runs one batch and appends the accepted hands to the history.
// The duplicate registry survives across imports, so re-importing an
// overlapping file counts duplicates instead of inflating statistics.
func (t *Tracker) Import(ctx context.Context, sources []batch.Source) (*batch.Report, error) {
	orch := batch.New(t.logger, t.user, t.registry, batch.WithWorkers(t.workers))

	t.mu.Lock()
	t.current = orch.Progress()
	t.mu.Unlock()

	report, err := orch.Process(ctx, sources)

	t.mu.Lock()
	t.hands = append(t.hands, report.Accepted...)
	t.mu.Unlock()
	return report, err
}

// Progress returns the state of the most recent batch, or a zero snapshot
// when no batch has run yet.
func (t *Tracker) Progress() batch.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.current == nil {
		return batch.Snapshot{CurrentStep: batch.StepIdle}
	}
	return t.current.Read()
}

// Hands returns a copy of the accepted history.
func (t *Tracker) Hands() []hand.Hand {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]hand.Hand, len(t.hands))
	copy(out, t.hands)
	return out
}

// HandByID finds one accepted hand.
func (t *Tracker) HandByID(id string) (*hand.Hand, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.hands {
		if t.hands[i].ID == id {
			h := t.hands[i]
			return &h, true
		}
	}
	return nil, false
}

// Statistics returns the snapshot for the filter. A cached entry has only
// the hands imported since its save folded in; a miss or a corrupt entry
// triggers a full recomputation over the whole history.
func (t *Tracker) Statistics(ctx context.Context, filter stats.Filter) (stats.Statistics, error) {
	if err := filter.Validate(); err != nil {
		return stats.Statistics{}, err
	}

	t.mu.RLock()
	history := t.hands
	total := len(t.hands)
	t.mu.RUnlock()

	key := store.Key{User: t.user, Fingerprint: filter.Fingerprint()}
	entry, err := t.store.Load(ctx, key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return t.recompute(ctx, key, filter, history)
	case err != nil:
		// The store being down degrades to recompute-every-time, not
		// to an error for the caller.
		t.logger.Warn().Err(err).Msg("snapshot load failed, recomputing")
		return t.recompute(ctx, key, filter, history)
	}

	if entry.Counters == nil || entry.HandsSeen > total {
		return t.recompute(ctx, key, filter, history)
	}
	if err := entry.Counters.Validate(); err != nil {
		t.logger.Warn().Err(err).Msg("cached counters failed validation, recomputing")
		return t.recompute(ctx, key, filter, history)
	}

	delta := history[entry.HandsSeen:]
	if len(delta) == 0 {
		return entry.Snapshot, nil
	}
	if err := stats.Fold(entry.Counters, delta, filter); err != nil {
		return stats.Statistics{}, err
	}
	snapshot := entry.Counters.Snapshot(&entry.Snapshot)
	t.save(ctx, key, &store.Entry{Counters: entry.Counters, Snapshot: snapshot, HandsSeen: total})
	return snapshot, nil
}

func (t *Tracker) recompute(ctx context.Context, key store.Key, filter stats.Filter, history []hand.Hand) (stats.Statistics, error) {
	counters, err := stats.ComputeParallel(ctx, history, filter, t.workers)
	if err != nil {
		return stats.Statistics{}, err
	}
	snapshot := counters.Snapshot(nil)
	t.save(ctx, key, &store.Entry{Counters: counters, Snapshot: snapshot, HandsSeen: len(history)})
	return snapshot, nil
}

// save is best effort: a failed write only costs a recompute later.
func (t *Tracker) save(ctx context.Context, key store.Key, entry *store.Entry) {
	if err := t.store.Save(ctx, key, entry); err != nil {
		t.logger.Warn().Err(err).Msg("snapshot save failed")
	}
}

// Analyze requests commentary for one accepted hand.
func (t *Tracker) Analyze(ctx context.Context, handID string) (string, error) {
	if t.analyzer == nil {
		return "", errors.New("no analysis backend configured")
	}
	h, ok := t.HandByID(handID)
	if !ok {
		return "", fmt.Errorf("hand %s not found", handID)
	}
	return t.analyzer.AnalyzeHand(ctx, h)
}
