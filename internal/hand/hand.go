// Package hand defines the canonical model for a played poker hand.
// Parsers for every supported platform converge on this one shape; the
// validator freezes it and the aggregator consumes it. All monetary
// amounts are integer cents to keep pot arithmetic exact.
package hand

import (
	"time"

	"handtracker/internal/deck"
)

// Platform identifies the client that exported a hand history.
type Platform string

const (
	PlatformPokerStars Platform = "pokerstars"
	PlatformGGPoker    Platform = "ggpoker"
)

// Format is the game format a hand was played in.
type Format string

const (
	FormatCash       Format = "cash"
	FormatTournament Format = "tournament"
	FormatSitNGo     Format = "sitngo"
)

// Street is one of the four betting rounds. Ordering is significant:
// actions replay in Street order, preflop first.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

// String returns the lowercase street name
func (s Street) String() string {
	switch s {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	default:
		return "unknown"
	}
}

// Streets lists the betting rounds in dealing order.
var Streets = []Street{Preflop, Flop, Turn, River}

// ActionType classifies a single voluntary action.
type ActionType int

const (
	Fold ActionType = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

// String returns the lowercase action name
func (a ActionType) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Bet:
		return "bet"
	case Raise:
		return "raise"
	case AllIn:
		return "all-in"
	default:
		return "unknown"
	}
}

// IsAggressive reports whether the action puts pressure on opponents.
func (a ActionType) IsAggressive() bool {
	return a == Bet || a == Raise
}

// Blinds describes the blind structure for a hand, in cents.
type Blinds struct {
	Small int64
	Big   int64
	Ante  int64
}

// Seat describes one occupied seat at hand start.
type Seat struct {
	Number int
	Player string
	Stack  int64
}

// PostKind distinguishes forced postings from voluntary actions.
type PostKind int

const (
	PostSmallBlind PostKind = iota
	PostBigBlind
	PostAnte
	PostDead
)

// Post records a forced posting (blind, ante, dead blind). Posts are kept
// separate from Actions so voluntary-money statistics never count them.
type Post struct {
	Player     string
	Kind       PostKind
	Amount     int64
	StackAfter int64
}

// Action records one voluntary action. Amount is the incremental number of
// cents the player put in with this action (0 for fold/check); To is the
// total street-level bet reached, which matters for raises.
type Action struct {
	Player     string
	Street     Street
	Type       ActionType
	Amount     int64
	To         int64
	AllIn      bool
	StackAfter int64
	TimeUsed   time.Duration
}

// Refund records an uncalled bet returned to a player.
type Refund struct {
	Player string
	Amount int64
}

// Result is the per-seat outcome of a hand.
type Result struct {
	Player         string
	Seat           int
	Collected      int64
	Folded         bool
	WentToShowdown bool
	ShownCards     []deck.Card
}

// Hand is one played hand, immutable once accepted by the validator.
type Hand struct {
	Platform Platform
	ID       string

	GameType  string
	Format    Format
	Stakes    string
	Currency  string
	PlayMoney bool
	Blinds    Blinds

	TableName  string
	TableSize  int
	ButtonSeat int
	Timestamp  time.Time
	Timezone   string

	Hero      string
	HeroSeat  int
	HeroCards []deck.Card
	Position  Position

	Seats   []Seat
	Posts   []Post
	Actions []Action
	Board   []deck.Card
	Returns []Refund
	Results []Result

	Pot      int64
	Rake     int64
	Jackpot  int64
	Showdown bool

	RawText string
}

// SeatFor returns the seat occupied by the named player, or nil.
func (h *Hand) SeatFor(player string) *Seat {
	for i := range h.Seats {
		if h.Seats[i].Player == player {
			return &h.Seats[i]
		}
	}
	return nil
}

// ResultFor returns the recorded outcome for the named player, or nil.
func (h *Hand) ResultFor(player string) *Result {
	for i := range h.Results {
		if h.Results[i].Player == player {
			return &h.Results[i]
		}
	}
	return nil
}

// StreetDealt reports whether community cards for the street were revealed.
// Preflop is always dealt.
func (h *Hand) StreetDealt(s Street) bool {
	switch s {
	case Preflop:
		return true
	case Flop:
		return len(h.Board) >= 3
	case Turn:
		return len(h.Board) >= 4
	case River:
		return len(h.Board) >= 5
	default:
		return false
	}
}

// ActionsOn returns the voluntary actions taken on the given street,
// preserving their dealt order.
func (h *Hand) ActionsOn(s Street) []Action {
	var out []Action
	for _, a := range h.Actions {
		if a.Street == s {
			out = append(out, a)
		}
	}
	return out
}

// Contributed sums everything the named player put in the pot: forced posts
// plus voluntary action amounts, minus any uncalled bet returned.
func (h *Hand) Contributed(player string) int64 {
	var total int64
	for _, p := range h.Posts {
		if p.Player == player {
			total += p.Amount
		}
	}
	for _, a := range h.Actions {
		if a.Player == player {
			total += a.Amount
		}
	}
	for _, r := range h.Returns {
		if r.Player == player {
			total -= r.Amount
		}
	}
	return total
}

// Net returns the named player's net winnings for the hand in cents.
func (h *Hand) Net(player string) int64 {
	var collected int64
	if res := h.ResultFor(player); res != nil {
		collected = res.Collected
	}
	return collected - h.Contributed(player)
}

// HeroNet returns the subject's net winnings for the hand.
func (h *Hand) HeroNet() int64 {
	return h.Net(h.Hero)
}

// HeroShowdown reports whether the subject reached showdown.
func (h *Hand) HeroShowdown() bool {
	if res := h.ResultFor(h.Hero); res != nil {
		return res.WentToShowdown
	}
	return false
}

// Key identifies a hand for duplicate detection: the same hand re-imported
// from an overlapping file carries the same key.
type Key struct {
	User     string
	Platform Platform
	HandID   string
}
