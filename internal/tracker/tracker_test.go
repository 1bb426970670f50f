package tracker

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"handtracker/internal/batch"
	"handtracker/internal/stats"
	"handtracker/internal/store"
)

const rawHand = `PokerStars Hand #245110034881: Hold'em No Limit ($0.25/$0.50 USD) - 2024/03/15 20:01:02 ET
Table 'Aludra II' 6-max Seat #1 is the button
Seat 1: kaktus29 ($50.00 in chips)
Seat 2: heroPlayer ($50.00 in chips)
Seat 3: mr_flopped ($50.00 in chips)
heroPlayer: posts small blind $0.25
mr_flopped: posts big blind $0.50
*** HOLE CARDS ***
Dealt to heroPlayer [Ah Kh]
kaktus29: folds
heroPlayer: raises $1.50 to $2
mr_flopped: calls $1.50
*** FLOP *** [7c 2d Qs]
heroPlayer: bets $2.25
mr_flopped: folds
Uncalled bet ($2.25) returned to heroPlayer
heroPlayer collected $3.80 from pot
*** SUMMARY ***
Total pot $4.00 | Rake $0.20
Board [7c 2d Qs]
Seat 1: kaktus29 (button) folded before Flop (didn't bet)
Seat 2: heroPlayer (small blind) collected ($3.80)
Seat 3: mr_flopped (big blind) folded on the Flop
`

// rawHand2 is the same line one orbit later with a fresh id.
const rawHand2 = `PokerStars Hand #245110034900: Hold'em No Limit ($0.25/$0.50 USD) - 2024/03/15 20:12:00 ET
Table 'Aludra II' 6-max Seat #1 is the button
Seat 1: kaktus29 ($50.00 in chips)
Seat 2: heroPlayer ($50.00 in chips)
Seat 3: mr_flopped ($50.00 in chips)
heroPlayer: posts small blind $0.25
mr_flopped: posts big blind $0.50
*** HOLE CARDS ***
Dealt to heroPlayer [Td Th]
kaktus29: folds
heroPlayer: raises $1.50 to $2
mr_flopped: folds
Uncalled bet ($1.50) returned to heroPlayer
heroPlayer collected $1.00 from pot
*** SUMMARY ***
Total pot $1.00 | Rake $0
Seat 1: kaktus29 (button) folded before Flop (didn't bet)
Seat 2: heroPlayer (small blind) collected ($1.00)
Seat 3: mr_flopped (big blind) folded before Flop
`

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	return New(zerolog.Nop(), "heroPlayer", store.NewMemoryStore())
}

func TestImportAndStatistics(t *testing.T) {
	t.Parallel()

	tr := newTestTracker(t)
	report, err := tr.Import(context.Background(), []batch.Source{
		{Name: "a.txt", Text: rawHand},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Accepted) != 1 {
		t.Fatalf("accepted %d, want 1", len(report.Accepted))
	}

	snapshot, err := tr.Statistics(context.Background(), stats.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if snapshot.Generation != 1 {
		t.Errorf("generation = %d, want 1", snapshot.Generation)
	}
	if snapshot.Hands != 1 {
		t.Errorf("hands = %d, want 1", snapshot.Hands)
	}
	if snapshot.VPIP == nil || *snapshot.VPIP != 100 {
		t.Errorf("vpip = %v", snapshot.VPIP)
	}
}

// A second import folds only the delta into cached counters and bumps
// the snapshot generation.
func TestStatisticsIncrementalFold(t *testing.T) {
	t.Parallel()

	tr := newTestTracker(t)
	ctx := context.Background()

	if _, err := tr.Import(ctx, []batch.Source{{Name: "a.txt", Text: rawHand}}); err != nil {
		t.Fatal(err)
	}
	first, err := tr.Statistics(ctx, stats.Filter{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := tr.Import(ctx, []batch.Source{{Name: "b.txt", Text: rawHand2}}); err != nil {
		t.Fatal(err)
	}
	second, err := tr.Statistics(ctx, stats.Filter{})
	if err != nil {
		t.Fatal(err)
	}

	if second.Generation != first.Generation+1 {
		t.Errorf("generation = %d, want %d", second.Generation, first.Generation+1)
	}
	if second.Hands != 2 {
		t.Errorf("hands = %d, want 2", second.Hands)
	}

	// No new hands: the cached snapshot is returned untouched.
	third, err := tr.Statistics(ctx, stats.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if third.Generation != second.Generation {
		t.Errorf("idle query bumped generation to %d", third.Generation)
	}
}

// A user who queries statistics before importing anything seeds the cache
// with an entry computed over zero hands. The serialized entry comes back
// with nil position and trend maps, and the first real import must fold
// into it cleanly.
func TestStatisticsAfterEmptyHistoryQuery(t *testing.T) {
	t.Parallel()

	tr := newTestTracker(t)
	ctx := context.Background()

	empty, err := tr.Statistics(ctx, stats.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if empty.Hands != 0 || empty.Generation != 1 {
		t.Fatalf("empty snapshot hands=%d generation=%d", empty.Hands, empty.Generation)
	}

	if _, err := tr.Import(ctx, []batch.Source{{Name: "a.txt", Text: rawHand}}); err != nil {
		t.Fatal(err)
	}
	snap, err := tr.Statistics(ctx, stats.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if snap.Hands != 1 || snap.Generation != 2 {
		t.Errorf("hands=%d generation=%d, want 1/2", snap.Hands, snap.Generation)
	}
	if len(snap.Positions) == 0 {
		t.Error("position buckets missing after fold into empty cache entry")
	}
}

func TestStatisticsFilterScopesCache(t *testing.T) {
	t.Parallel()

	tr := newTestTracker(t)
	ctx := context.Background()
	if _, err := tr.Import(ctx, []batch.Source{{Name: "a.txt", Text: rawHand}}); err != nil {
		t.Fatal(err)
	}

	all, err := tr.Statistics(ctx, stats.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	tourneys, err := tr.Statistics(ctx, stats.Filter{Format: "tournament"})
	if err != nil {
		t.Fatal(err)
	}
	if all.Hands != 1 || tourneys.Hands != 0 {
		t.Errorf("all=%d tournament=%d, want 1/0", all.Hands, tourneys.Hands)
	}
}

func TestStatisticsRejectsBadFilter(t *testing.T) {
	t.Parallel()

	tr := newTestTracker(t)
	if _, err := tr.Statistics(context.Background(), stats.Filter{Format: "razz"}); err == nil {
		t.Fatal("accepted unknown format")
	}
}

func TestProgressIdleBeforeFirstImport(t *testing.T) {
	t.Parallel()

	tr := newTestTracker(t)
	if got := tr.Progress().CurrentStep; got != batch.StepIdle {
		t.Errorf("step = %q, want idle", got)
	}
}

func TestHandByID(t *testing.T) {
	t.Parallel()

	tr := newTestTracker(t)
	if _, err := tr.Import(context.Background(), []batch.Source{{Name: "a.txt", Text: rawHand}}); err != nil {
		t.Fatal(err)
	}

	h, ok := tr.HandByID("245110034881")
	if !ok {
		t.Fatal("imported hand not found")
	}
	if h.Hero != "heroPlayer" {
		t.Errorf("hero = %q", h.Hero)
	}
	if _, ok := tr.HandByID("nope"); ok {
		t.Error("found a hand that was never imported")
	}
}
