package stats

import (
	"fmt"
	"math"
	"sort"

	"handtracker/internal/hand"
)

// StreetRates carries one postflop rate per street as percentages; a nil
// entry means the statistic is undefined for that street (no opportunity
// was ever observed), which is distinct from 0%.
type StreetRates struct {
	Flop  *float64 `json:"flop"`
	Turn  *float64 `json:"turn"`
	River *float64 `json:"river"`
}

// TrendPoint is one month's aggregate, in chronological order.
type TrendPoint struct {
	Bucket string  `json:"bucket"`
	Hands  int64   `json:"hands"`
	NetBB  float64 `json:"net_bb"`
}

// PositionStats is the per-position slice of the snapshot.
type PositionStats struct {
	Hands        int64    `json:"hands"`
	VPIP         *float64 `json:"vpip"`
	PFR          *float64 `json:"pfr"`
	ThreeBet     *float64 `json:"three_bet"`
	NetBB        float64  `json:"net_bb"`
	WinRateBB100 *float64 `json:"win_rate_bb100"`
}

// Statistics is an immutable point-in-time snapshot. A newer computation
// produces a new value with a higher generation; nothing mutates an
// already returned snapshot, so readers need no locking.
type Statistics struct {
	Generation uint64 `json:"generation"`
	Hands      int64  `json:"hands"`

	VPIP           *float64 `json:"vpip"`
	PFR            *float64 `json:"pfr"`
	ThreeBet       *float64 `json:"three_bet"`
	FoldToThreeBet *float64 `json:"fold_to_three_bet"`
	FourBet        *float64 `json:"four_bet"`
	ColdCall       *float64 `json:"cold_call"`

	CBet       StreetRates `json:"cbet"`
	FoldToCBet StreetRates `json:"fold_to_cbet"`
	CheckRaise StreetRates `json:"check_raise"`

	// AggressionFactor is nil when the subject never called: the ratio
	// is undefined, not infinite-as-zero.
	AggressionFactor *float64 `json:"aggression_factor"`

	WinRateBB100 *float64 `json:"win_rate_bb100"`

	NetCents      int64   `json:"net_cents"`
	NetBB         float64 `json:"net_bb"`
	RedLineCents  int64   `json:"red_line_cents"`
	BlueLineCents int64   `json:"blue_line_cents"`
	RedLineBB     float64 `json:"red_line_bb"`
	BlueLineBB    float64 `json:"blue_line_bb"`

	Positions map[hand.Position]PositionStats `json:"positions,omitempty"`
	Trend     []TrendPoint                    `json:"trend,omitempty"`
}

// Snapshot derives an immutable Statistics value from the counters,
// numbering it one generation past prev (or generation 1 for a fresh
// scope).
func (c *Counters) Snapshot(prev *Statistics) Statistics {
	gen := uint64(1)
	if prev != nil {
		gen = prev.Generation + 1
	}

	s := Statistics{
		Generation: gen,
		Hands:      c.Hands,

		VPIP:           c.VPIP.Percent(),
		PFR:            c.PFR.Percent(),
		ThreeBet:       c.ThreeBet.Percent(),
		FoldToThreeBet: c.FoldToThreeBet.Percent(),
		FourBet:        c.FourBet.Percent(),
		ColdCall:       c.ColdCall.Percent(),

		CBet:       streetRates(c.CBet),
		FoldToCBet: streetRates(c.FoldToCBet),
		CheckRaise: streetRates(c.CheckRaise),

		NetCents:      c.NetCents,
		NetBB:         c.NetBB,
		RedLineCents:  c.RedLineCents,
		BlueLineCents: c.BlueLineCents,
		RedLineBB:     c.RedLineBB,
		BlueLineBB:    c.BlueLineBB,
	}

	if c.Calls > 0 {
		af := float64(c.Bets+c.Raises) / float64(c.Calls)
		s.AggressionFactor = &af
	}
	if c.Hands > 0 {
		wr := c.NetBB / float64(c.Hands) * 100
		s.WinRateBB100 = &wr
	}

	if len(c.ByPosition) > 0 {
		s.Positions = make(map[hand.Position]PositionStats, len(c.ByPosition))
		for pos, pc := range c.ByPosition {
			ps := PositionStats{
				Hands:    pc.Hands,
				VPIP:     pc.VPIP.Percent(),
				PFR:      pc.PFR.Percent(),
				ThreeBet: pc.ThreeBet.Percent(),
				NetBB:    pc.NetBB,
			}
			if pc.Hands > 0 {
				wr := pc.NetBB / float64(pc.Hands) * 100
				ps.WinRateBB100 = &wr
			}
			s.Positions[pos] = ps
		}
	}

	if len(c.Trend) > 0 {
		keys := make([]string, 0, len(c.Trend))
		for k := range c.Trend {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		s.Trend = make([]TrendPoint, 0, len(keys))
		for _, k := range keys {
			tb := c.Trend[k]
			s.Trend = append(s.Trend, TrendPoint{Bucket: k, Hands: tb.Hands, NetBB: tb.NetBB})
		}
	}

	return s
}

func streetRates(sc StreetCounters) StreetRates {
	return StreetRates{
		Flop:  sc.Flop.Percent(),
		Turn:  sc.Turn.Percent(),
		River: sc.River.Percent(),
	}
}

// Validate checks counter state for corruption before it is trusted for
// a snapshot: a numerator can never exceed its denominator, counts are
// non-negative, and the red/blue split must account for all winnings.
func (c *Counters) Validate() error {
	rates := map[string]RateCounter{
		"vpip":              c.VPIP,
		"pfr":               c.PFR,
		"three_bet":         c.ThreeBet,
		"fold_to_three_bet": c.FoldToThreeBet,
		"four_bet":          c.FourBet,
		"cold_call":         c.ColdCall,
		"cbet_flop":         c.CBet.Flop,
		"cbet_turn":         c.CBet.Turn,
		"cbet_river":        c.CBet.River,
		"fold_to_cbet_flop": c.FoldToCBet.Flop,
		"check_raise_flop":  c.CheckRaise.Flop,
	}
	for name, r := range rates {
		if r.Num < 0 || r.Den < 0 {
			return &AggregationError{Reason: fmt.Sprintf("counter %s is negative", name)}
		}
		if r.Num > r.Den {
			return &AggregationError{Reason: fmt.Sprintf(
				"counter %s numerator %d exceeds denominator %d", name, r.Num, r.Den)}
		}
	}
	if c.Hands < 0 {
		return &AggregationError{Reason: "hand count is negative"}
	}
	if c.VPIP.Den > c.Hands {
		return &AggregationError{Reason: fmt.Sprintf(
			"vpip opportunities %d exceed hand count %d", c.VPIP.Den, c.Hands)}
	}
	if c.RedLineCents+c.BlueLineCents != c.NetCents {
		return &AggregationError{Reason: fmt.Sprintf(
			"winnings ledger out of balance: red %d + blue %d != net %d",
			c.RedLineCents, c.BlueLineCents, c.NetCents)}
	}
	if diff := c.RedLineBB + c.BlueLineBB - c.NetBB; math.Abs(diff) > 1e-6 {
		return &AggregationError{Reason: fmt.Sprintf(
			"bb ledger out of balance by %.9f", diff)}
	}
	return nil
}
