package batch

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"handtracker/internal/hand"
	"handtracker/internal/validate"
)

const rawCashHand = `PokerStars Hand #245110034881: Hold'em No Limit ($0.25/$0.50 USD) - 2024/03/15 20:01:02 ET
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
mr_flopped: calls $2.25
*** TURN *** [7c 2d Qs] [5h]
heroPlayer: checks
mr_flopped: checks
*** RIVER *** [7c 2d Qs 5h] [9s]
heroPlayer: bets $4.50
mr_flopped: folds
Uncalled bet ($4.50) returned to heroPlayer
heroPlayer collected $8.10 from pot
*** SUMMARY ***
Total pot $8.50 | Rake $0.40
Board [7c 2d Qs 5h 9s]
Seat 1: kaktus29 (button) folded before Flop (didn't bet)
Seat 2: heroPlayer (small blind) collected ($8.10)
Seat 3: mr_flopped (big blind) folded on the River
`

func newTestOrchestrator(opts ...Option) *Orchestrator {
	return New(zerolog.Nop(), "heroPlayer", validate.NewRegistry(), opts...)
}

func TestProcessAcceptsHands(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator()
	report, err := o.Process(context.Background(), []Source{
		{Name: "session1.txt", Text: rawCashHand},
	})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(report.Accepted) != 1 {
		t.Fatalf("accepted %d hands, want 1", len(report.Accepted))
	}
	if report.Accepted[0].ID != "245110034881" {
		t.Errorf("unexpected hand id %q", report.Accepted[0].ID)
	}
	if len(report.Failures) != 0 || len(report.FileFailures) != 0 {
		t.Errorf("unexpected failures: %+v %+v", report.Failures, report.FileFailures)
	}

	snap := o.Progress().Read()
	if snap.CurrentStep != StepDone {
		t.Errorf("step = %q, want done", snap.CurrentStep)
	}
	if snap.Percent != 100 {
		t.Errorf("percent = %v, want 100", snap.Percent)
	}
	if snap.HandsProcessed != 1 {
		t.Errorf("processed = %d, want 1", snap.HandsProcessed)
	}
}

// Re-importing the same file must count duplicates, never double count.
func TestProcessIdempotentImport(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator()
	src := []Source{{Name: "session1.txt", Text: rawCashHand}}

	first, err := o.Process(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	second, err := o.Process(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}

	if len(second.Accepted) != 0 {
		t.Errorf("second run accepted %d hands, want 0", len(second.Accepted))
	}
	if second.Duplicates != len(first.Accepted) {
		t.Errorf("second run found %d duplicates, want %d", second.Duplicates, len(first.Accepted))
	}
}

func TestProcessSkipsUnrecognizedFile(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator()
	report, err := o.Process(context.Background(), []Source{
		{Name: "other.txt", Text: "Winamax Poker - CashGame - HandId: #1\n"},
		{Name: "good.txt", Text: rawCashHand},
	})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(report.FileFailures) != 1 {
		t.Fatalf("file failures = %d, want 1", len(report.FileFailures))
	}
	if report.FileFailures[0].Source != "other.txt" {
		t.Errorf("failed source = %q", report.FileFailures[0].Source)
	}
	if len(report.Accepted) != 1 {
		t.Errorf("accepted %d hands, want 1: a bad file must not sink the batch", len(report.Accepted))
	}
}

func TestProcessPlatformHint(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator()
	report, err := o.Process(context.Background(), []Source{
		{Name: "s.txt", Text: rawCashHand, Hint: hand.PlatformPokerStars},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Accepted) != 1 {
		t.Fatalf("accepted %d hands, want 1", len(report.Accepted))
	}

	// A hint naming an unsupported platform skips the file.
	report, err = o.Process(context.Background(), []Source{
		{Name: "s.txt", Text: rawCashHand, Hint: hand.Platform("partypoker")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.FileFailures) != 1 {
		t.Errorf("file failures = %d, want 1", len(report.FileFailures))
	}
}

func TestProcessCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOrchestrator()
	report, err := o.Process(ctx, []Source{{Name: "s.txt", Text: rawCashHand}})
	if err == nil {
		t.Fatal("Process ignored a cancelled context")
	}
	if report == nil {
		t.Fatal("cancelled batch must still return its partial report")
	}
	if len(report.Accepted) != 0 {
		t.Errorf("accepted %d hands under immediate cancellation", len(report.Accepted))
	}
}

func TestProcessRejectedHandReported(t *testing.T) {
	t.Parallel()

	// Corrupt the pot line so validation fails while parsing succeeds.
	bad := strings.Replace(rawCashHand, "Total pot $8.50", "Total pot $9.50", 1)

	o := newTestOrchestrator()
	report, err := o.Process(context.Background(), []Source{{Name: "s.txt", Text: bad}})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Accepted) != 0 {
		t.Fatalf("accepted %d hands, want 0", len(report.Accepted))
	}
	if len(report.Failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(report.Failures))
	}
	if report.Failures[0].HandID != "245110034881" {
		t.Errorf("failure id = %q", report.Failures[0].HandID)
	}
}
