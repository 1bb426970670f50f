package stats

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"handtracker/internal/hand"
)

// AggregationError reports a malformed filter or corrupt counter state.
// It is fatal for the one statistics request, nothing else.
type AggregationError struct {
	Reason string
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("stats: %s", e.Reason)
}

// Filter selects the hand subset a statistics request covers. The zero
// value matches every hand. Play money is a filter dimension, not a
// baked-in exclusion: nil includes both, true selects play-money hands
// only, false selects real-money hands only.
type Filter struct {
	From      time.Time     `json:"from,omitempty"`
	To        time.Time     `json:"to,omitempty"`
	Format    hand.Format   `json:"format,omitempty"`
	Stakes    string        `json:"stakes,omitempty"`
	Position  hand.Position `json:"position,omitempty"`
	PlayMoney *bool         `json:"play_money,omitempty"`
}

// Validate rejects filters that cannot match anything sensibly.
func (f Filter) Validate() error {
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return &AggregationError{Reason: fmt.Sprintf(
			"filter date range starts %s after it ends %s",
			f.From.Format(time.RFC3339), f.To.Format(time.RFC3339))}
	}
	switch f.Format {
	case "", hand.FormatCash, hand.FormatTournament, hand.FormatSitNGo:
	default:
		return &AggregationError{Reason: fmt.Sprintf("unknown game format %q", f.Format)}
	}
	return nil
}

// Match reports whether the hand belongs to the filtered subset.
func (f Filter) Match(h *hand.Hand) bool {
	if !f.From.IsZero() && h.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && h.Timestamp.After(f.To) {
		return false
	}
	if f.Format != "" && h.Format != f.Format {
		return false
	}
	if f.Stakes != "" && h.Stakes != f.Stakes {
		return false
	}
	if f.Position != hand.PositionUnknown && h.Position != f.Position {
		return false
	}
	if f.PlayMoney != nil && h.PlayMoney != *f.PlayMoney {
		return false
	}
	return true
}

// Fingerprint returns a stable identifier for the filter, used as part of
// the snapshot cache key. Equal filters always produce equal fingerprints.
func (f Filter) Fingerprint() string {
	pm := "any"
	if f.PlayMoney != nil {
		pm = fmt.Sprintf("%t", *f.PlayMoney)
	}
	stamp := func(t time.Time) int64 {
		if t.IsZero() {
			return 0
		}
		return t.Unix()
	}
	canonical := fmt.Sprintf("from=%d|to=%d|format=%s|stakes=%s|position=%s|play=%s",
		stamp(f.From), stamp(f.To), f.Format, f.Stakes, f.Position, pm)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:8])
}
