// Package stats derives aggregate poker statistics from accepted hands.
//
// Every rate is a qualifying-event count over an opportunity count, and
// the opportunity differs per statistic; the Counters struct retains both
// sides so snapshots can be recomputed incrementally by folding a delta
// batch into retained counters. The fold is associative and commutative:
// merging per-partition counters equals one pass over the whole set.
package stats

import (
	"handtracker/internal/hand"
)

// RateCounter holds one statistic's numerator and denominator.
type RateCounter struct {
	Num int64 `json:"num"`
	Den int64 `json:"den"`
}

// observe records an opportunity and whether the qualifying event fired.
func (r *RateCounter) observe(hit bool) {
	r.Den++
	if hit {
		r.Num++
	}
}

// Percent returns the rate as a percentage, or nil when the statistic is
// undefined because no opportunity was ever observed. Undefined is not
// zero: a hand set with no c-bet opportunities has no c-bet percentage.
func (r RateCounter) Percent() *float64 {
	if r.Den == 0 {
		return nil
	}
	v := float64(r.Num) / float64(r.Den) * 100
	return &v
}

func (r *RateCounter) merge(o RateCounter) {
	r.Num += o.Num
	r.Den += o.Den
}

// StreetCounters holds one postflop statistic per dealt street.
type StreetCounters struct {
	Flop  RateCounter `json:"flop"`
	Turn  RateCounter `json:"turn"`
	River RateCounter `json:"river"`
}

func (s *StreetCounters) on(street hand.Street) *RateCounter {
	switch street {
	case hand.Flop:
		return &s.Flop
	case hand.Turn:
		return &s.Turn
	default:
		return &s.River
	}
}

func (s *StreetCounters) merge(o StreetCounters) {
	s.Flop.merge(o.Flop)
	s.Turn.merge(o.Turn)
	s.River.merge(o.River)
}

// TrendBucket accumulates results for one calendar month.
type TrendBucket struct {
	Hands    int64   `json:"hands"`
	NetCents int64   `json:"net_cents"`
	NetBB    float64 `json:"net_bb"`
}

// Counters is the explicit, serializable accumulator state for one
// (user, filter) scope. Callers own its lifecycle and persistence; the
// aggregator never holds hidden state between calls.
type Counters struct {
	Hands         int64 `json:"hands"`
	ShowdownHands int64 `json:"showdown_hands"`

	VPIP           RateCounter `json:"vpip"`
	PFR            RateCounter `json:"pfr"`
	ThreeBet       RateCounter `json:"three_bet"`
	FoldToThreeBet RateCounter `json:"fold_to_three_bet"`
	FourBet        RateCounter `json:"four_bet"`
	ColdCall       RateCounter `json:"cold_call"`

	CBet       StreetCounters `json:"cbet"`
	FoldToCBet StreetCounters `json:"fold_to_cbet"`
	CheckRaise StreetCounters `json:"check_raise"`

	Bets   int64 `json:"bets"`
	Raises int64 `json:"raises"`
	Calls  int64 `json:"calls"`

	NetCents      int64   `json:"net_cents"`
	NetBB         float64 `json:"net_bb"`
	RedLineCents  int64   `json:"red_line_cents"`
	BlueLineCents int64   `json:"blue_line_cents"`
	RedLineBB     float64 `json:"red_line_bb"`
	BlueLineBB    float64 `json:"blue_line_bb"`

	ByPosition map[hand.Position]*Counters `json:"by_position,omitempty"`
	Trend      map[string]*TrendBucket     `json:"trend,omitempty"`
}

// NewCounters returns an empty accumulator.
func NewCounters() *Counters {
	return &Counters{
		ByPosition: make(map[hand.Position]*Counters),
		Trend:      make(map[string]*TrendBucket),
	}
}

// Add folds one accepted hand into the counters. Hands with no known
// subject contribute nothing: statistics are defined from the subject's
// point of view.
func (c *Counters) Add(h *hand.Hand) {
	if h.Hero == "" {
		return
	}
	c.add(h, true)
}

func (c *Counters) add(h *hand.Hand, top bool) {
	c.Hands++

	net := h.HeroNet()
	showdown := h.HeroShowdown()
	c.NetCents += net
	if showdown {
		c.ShowdownHands++
		c.BlueLineCents += net
	} else {
		c.RedLineCents += net
	}
	if h.Blinds.Big > 0 {
		bb := float64(net) / float64(h.Blinds.Big)
		c.NetBB += bb
		if showdown {
			c.BlueLineBB += bb
		} else {
			c.RedLineBB += bb
		}
	}

	c.addPreflop(h)
	c.addPostflop(h)
	c.addAggression(h)

	if top {
		// Counters that round-tripped through JSON come back with nil maps,
		// since empty ones are omitted on encode.
		if pos := h.Position; pos != hand.PositionUnknown {
			if c.ByPosition == nil {
				c.ByPosition = make(map[hand.Position]*Counters)
			}
			bucket, ok := c.ByPosition[pos]
			if !ok {
				bucket = &Counters{}
				c.ByPosition[pos] = bucket
			}
			bucket.add(h, false)
		}
		if !h.Timestamp.IsZero() {
			if c.Trend == nil {
				c.Trend = make(map[string]*TrendBucket)
			}
			key := h.Timestamp.Format("2006-01")
			tb, ok := c.Trend[key]
			if !ok {
				tb = &TrendBucket{}
				c.Trend[key] = tb
			}
			tb.Hands++
			tb.NetCents += net
			if h.Blinds.Big > 0 {
				tb.NetBB += float64(net) / float64(h.Blinds.Big)
			}
		}
	}
}

// addPreflop walks the preflop action sequence once, tracking the raise
// count at each of the subject's decision points. The walk position, not
// the hand total, decides every opportunity: a hand where the subject
// open-raises and later faces a 3-bet is a 3-bet opportunity for the
// villain, not for the subject.
func (c *Counters) addPreflop(h *hand.Hand) {
	hero := h.Hero
	preflop := h.ActionsOn(hand.Preflop)

	var (
		acted         bool // hero had a voluntary decision point
		voluntary     bool // hero put voluntary money in
		raised        bool
		heroRaised    bool // hero has made a preflop raise so far
		heroInvested  bool // hero voluntarily invested (call/bet/raise) so far
		raises        int
		threeBetOpp   bool
		threeBetHit   bool
		facedOpp      bool // hero was re-raised after raising and got to act
		facedFolded   bool
		facedFourBet  bool
		coldCallOpp   bool
		coldCallHit   bool
	)

	for _, a := range preflop {
		if a.Player == hero {
			acted = true
			switch a.Type {
			case hand.Call, hand.Bet, hand.Raise, hand.AllIn:
				voluntary = true
			}
			if a.Type == hand.Raise || a.Type == hand.Bet {
				raised = true
			}

			// 3-bet: facing exactly one raise with the chance to act.
			if raises == 1 && !threeBetOpp {
				threeBetOpp = true
				threeBetHit = a.Type == hand.Raise
			}

			// Facing a re-raise of our own raise.
			if heroRaised && raises >= 2 && !facedOpp {
				facedOpp = true
				facedFolded = a.Type == hand.Fold
				facedFourBet = a.Type == hand.Raise
			}

			// Cold call: facing a raise with nothing voluntarily invested.
			if raises >= 1 && !heroInvested && !coldCallOpp {
				coldCallOpp = true
				coldCallHit = a.Type == hand.Call
			}

			if a.Type == hand.Raise || a.Type == hand.Bet {
				heroRaised = true
			}
			switch a.Type {
			case hand.Call, hand.Bet, hand.Raise:
				heroInvested = true
			}
		}
		if a.Type == hand.Raise || a.Type == hand.Bet {
			raises++
		}
	}

	// VPIP/PFR opportunity requires a voluntary decision point: a big
	// blind walk (everyone folds before the subject can act) counts in
	// neither numerator nor denominator.
	if acted {
		c.VPIP.observe(voluntary)
		c.PFR.observe(raised)
	}
	if threeBetOpp {
		c.ThreeBet.observe(threeBetHit)
	}
	if facedOpp {
		c.FoldToThreeBet.observe(facedFolded)
		c.FourBet.observe(facedFourBet)
	}
	if coldCallOpp {
		c.ColdCall.observe(coldCallHit)
	}
}

// addPostflop evaluates the continuation-bet family per dealt street.
func (c *Counters) addPostflop(h *hand.Hand) {
	hero := h.Hero
	aggressor := preflopAggressor(h)

	for _, street := range []hand.Street{hand.Flop, hand.Turn, hand.River} {
		if !h.StreetDealt(street) {
			continue
		}
		actions := h.ActionsOn(street)

		// C-bet: the preflop aggressor betting the street they reached.
		if aggressor == hero && hero != "" {
			hit := false
			for _, a := range actions {
				if a.Player == hero && a.Type == hand.Bet {
					hit = true
					break
				}
			}
			c.CBet.on(street).observe(hit)
		}

		// Fold to c-bet: the aggressor opened the street's betting and
		// the subject acted after that bet.
		if aggressor != "" && aggressor != hero {
			cbetIdx := -1
			for i, a := range actions {
				if a.Type == hand.Bet {
					if a.Player == aggressor {
						cbetIdx = i
					}
					break
				}
			}
			if cbetIdx >= 0 {
				for _, a := range actions[cbetIdx+1:] {
					if a.Player == hero {
						c.FoldToCBet.on(street).observe(a.Type == hand.Fold)
						break
					}
				}
			}
		}

		// Check-raise: subject checked, someone bet, subject acted again.
		checkedAt := -1
		for i, a := range actions {
			if a.Player == hero && a.Type == hand.Check {
				checkedAt = i
				break
			}
		}
		if checkedAt >= 0 {
			betAfter := -1
			for i := checkedAt + 1; i < len(actions); i++ {
				if actions[i].Player != hero && actions[i].Type == hand.Bet {
					betAfter = i
					break
				}
			}
			if betAfter >= 0 {
				for _, a := range actions[betAfter+1:] {
					if a.Player == hero {
						c.CheckRaise.on(street).observe(a.Type == hand.Raise)
						break
					}
				}
			}
		}
	}
}

// addAggression tallies the subject's aggressive and passive actions
// across all streets.
func (c *Counters) addAggression(h *hand.Hand) {
	for _, a := range h.Actions {
		if a.Player != h.Hero {
			continue
		}
		switch a.Type {
		case hand.Bet:
			c.Bets++
		case hand.Raise:
			c.Raises++
		case hand.Call:
			c.Calls++
		}
	}
}

// preflopAggressor returns the player who made the last preflop raise, or
// empty when the pot was unraised.
func preflopAggressor(h *hand.Hand) string {
	aggressor := ""
	for _, a := range h.ActionsOn(hand.Preflop) {
		if a.Type == hand.Raise || a.Type == hand.Bet {
			aggressor = a.Player
		}
	}
	return aggressor
}

// Merge folds another accumulator into this one. Merge is the associative
// operation that makes chunked and incremental computation equivalent to
// a single full pass.
func (c *Counters) Merge(o *Counters) {
	if o == nil {
		return
	}
	c.Hands += o.Hands
	c.ShowdownHands += o.ShowdownHands

	c.VPIP.merge(o.VPIP)
	c.PFR.merge(o.PFR)
	c.ThreeBet.merge(o.ThreeBet)
	c.FoldToThreeBet.merge(o.FoldToThreeBet)
	c.FourBet.merge(o.FourBet)
	c.ColdCall.merge(o.ColdCall)

	c.CBet.merge(o.CBet)
	c.FoldToCBet.merge(o.FoldToCBet)
	c.CheckRaise.merge(o.CheckRaise)

	c.Bets += o.Bets
	c.Raises += o.Raises
	c.Calls += o.Calls

	c.NetCents += o.NetCents
	c.NetBB += o.NetBB
	c.RedLineCents += o.RedLineCents
	c.BlueLineCents += o.BlueLineCents
	c.RedLineBB += o.RedLineBB
	c.BlueLineBB += o.BlueLineBB

	for pos, theirs := range o.ByPosition {
		if c.ByPosition == nil {
			c.ByPosition = make(map[hand.Position]*Counters)
		}
		mine, ok := c.ByPosition[pos]
		if !ok {
			mine = &Counters{}
			c.ByPosition[pos] = mine
		}
		mine.Merge(theirs)
	}
	for key, theirs := range o.Trend {
		if c.Trend == nil {
			c.Trend = make(map[string]*TrendBucket)
		}
		mine, ok := c.Trend[key]
		if !ok {
			mine = &TrendBucket{}
			c.Trend[key] = mine
		}
		mine.Hands += theirs.Hands
		mine.NetCents += theirs.NetCents
		mine.NetBB += theirs.NetBB
	}
}
