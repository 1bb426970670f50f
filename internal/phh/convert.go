package phh

import (
	"fmt"
	"strings"

	"handtracker/internal/deck"
	"handtracker/internal/hand"
)

// Convert maps a canonical hand to its PHH form. Seats are emitted in
// table order and players referred to as p1..pN following that order.
// Hole cards are only known for the hand's subject; other players deal
// "????" unless they showed at showdown.
func Convert(h *hand.Hand) *HandHistory {
	index := make(map[string]int, len(h.Seats))
	out := &HandHistory{
		Variant:           "NT",
		Table:             h.TableName,
		SeatCount:         h.TableSize,
		Seats:             make([]int, len(h.Seats)),
		Antes:             make([]int, len(h.Seats)),
		BlindsOrStraddles: make([]int, len(h.Seats)),
		MinBet:            int(h.Blinds.Big),
		StartingStacks:    make([]int, len(h.Seats)),
		FinishingStacks:   make([]int, len(h.Seats)),
		Winnings:          make([]int, len(h.Seats)),
		Players:           make([]string, len(h.Seats)),
		HandID:            h.ID,
		Currency:          h.Currency,
		Timestamp:         h.Timestamp,
		TimeZone:          h.Timezone,
	}
	for i, seat := range h.Seats {
		index[seat.Player] = i
		out.Seats[i] = seat.Number
		out.Players[i] = seat.Player
		out.StartingStacks[i] = int(seat.Stack)
		out.FinishingStacks[i] = int(seat.Stack - h.Contributed(seat.Player))
	}
	for _, p := range h.Posts {
		i, ok := index[p.Player]
		if !ok {
			continue
		}
		switch p.Kind {
		case hand.PostAnte:
			out.Antes[i] += int(p.Amount)
		default:
			out.BlindsOrStraddles[i] += int(p.Amount)
		}
	}
	for _, res := range h.Results {
		if i, ok := index[res.Player]; ok {
			out.Winnings[i] = int(res.Collected)
			out.FinishingStacks[i] += int(res.Collected)
		}
	}

	out.Actions = buildActions(h, index)

	if !h.Timestamp.IsZero() {
		out.Time = h.Timestamp.Format("15:04:05")
		out.Day = h.Timestamp.Day()
		out.Month = int(h.Timestamp.Month())
		out.Year = h.Timestamp.Year()
	}
	return out
}

// buildActions replays the hand in PHH vocabulary: "d dh" hole card
// deals, "d db" board deals between streets, then "pN f|cc|cbr" for the
// voluntary actions.
func buildActions(h *hand.Hand, index map[string]int) []string {
	var actions []string

	for i, seat := range h.Seats {
		cards := "????"
		if seat.Player == h.Hero && len(h.HeroCards) > 0 {
			cards = cardRun(h.HeroCards)
		} else if res := h.ResultFor(seat.Player); res != nil && len(res.ShownCards) > 0 {
			cards = cardRun(res.ShownCards)
		}
		actions = append(actions, fmt.Sprintf("d dh p%d %s", i+1, cards))
	}

	// Street-level totals reconstruct the "to" amount cbr requires.
	totals := make(map[string]int64)
	street := hand.Preflop
	for _, a := range h.Actions {
		for street < a.Street {
			street++
			if dealt := boardFor(h, street); dealt != "" {
				actions = append(actions, "d db "+dealt)
			}
			clear(totals)
		}
		i, ok := index[a.Player]
		if !ok {
			continue
		}
		totals[a.Player] += a.Amount
		switch a.Type {
		case hand.Fold:
			actions = append(actions, fmt.Sprintf("p%d f", i+1))
		case hand.Check, hand.Call:
			actions = append(actions, fmt.Sprintf("p%d cc", i+1))
		case hand.Bet, hand.Raise, hand.AllIn:
			to := a.To
			if to == 0 {
				to = totals[a.Player]
			}
			actions = append(actions, fmt.Sprintf("p%d cbr %d", i+1, to))
		}
	}

	// Streets dealt after all betting ended (all-in runouts) still get
	// their board deals.
	for street < hand.River {
		street++
		if dealt := boardFor(h, street); dealt != "" {
			actions = append(actions, "d db "+dealt)
		}
	}
	return actions
}

func cardRun(cards []deck.Card) string {
	return strings.Join(deck.Strings(cards), "")
}

// boardFor returns the cards revealed at the given street, space-joined,
// or "" if the street never came.
func boardFor(h *hand.Hand, s hand.Street) string {
	if !h.StreetDealt(s) {
		return ""
	}
	switch s {
	case hand.Flop:
		return strings.Join(deck.Strings(h.Board[:3]), " ")
	case hand.Turn:
		return h.Board[3].String()
	case hand.River:
		return h.Board[4].String()
	default:
		return ""
	}
}
