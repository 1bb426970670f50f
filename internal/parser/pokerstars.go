package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"handtracker/internal/hand"
)

// PokerStars classic desktop export grammar.
var (
	psHeaderRe  = regexp.MustCompile(`^PokerStars (?:Zoom )?(?:Hand|Game) #(\d+):\s*(.+?) - (\d{4}/\d{2}/\d{2}) (\d{1,2}:\d{2}:\d{2})(?: ([A-Z]{1,4}))?\s*$`)
	psTourneyRe = regexp.MustCompile(`^Tournament #(\d+), (.+?) ((?:Hold'em|Omaha).*?) - Level [IVXL0-9]+ \((\d+)/(\d+)\)$`)
	psCashRe    = regexp.MustCompile(`^(.+?) \((\$?[\d.,]+)/(\$?[\d.,]+)(?: ([A-Z]{3}))?\)$`)

	psTableRe     = regexp.MustCompile(`^Table '(.+)' (\d+)-max(?: \(Play Money\))? Seat #(\d+) is the button$`)
	psSeatRe      = regexp.MustCompile(`^Seat (\d+): (.+?) \((\$?[\d.,]+) in chips\)(?: is sitting out)?$`)
	psPostRe      = regexp.MustCompile(`^(.+?): posts (small blind|big blind|the ante|small & big blinds) (\$?[\d.,]+)( and is all-in)?$`)
	psDealtRe     = regexp.MustCompile(`^Dealt to (.+?) \[([^\]]+)\]$`)
	psActionRe    = regexp.MustCompile(`^(.+?): (folds|checks|calls|bets|raises)(?: (\$?[\d.,]+))?(?: to (\$?[\d.,]+))?( and is all-in)?$`)
	psUncalledRe  = regexp.MustCompile(`^Uncalled bet \((\$?[\d.,]+)\) returned to (.+)$`)
	psCollectedRe = regexp.MustCompile(`^(.+?) collected (\$?[\d.,]+) from (?:(?:main|side) )?pot`)
	psShowsRe     = regexp.MustCompile(`^(.+?): shows \[([^\]]+)\]`)
	psMucksRe     = regexp.MustCompile(`^(.+?): mucks hand$`)

	psFlopRe  = regexp.MustCompile(`^\*\*\* FLOP \*\*\* \[([^\]]+)\]`)
	psTurnRe  = regexp.MustCompile(`^\*\*\* TURN \*\*\* \[[^\]]+\] \[([^\]]+)\]`)
	psRiverRe = regexp.MustCompile(`^\*\*\* RIVER \*\*\* \[[^\]]+\] \[([^\]]+)\]`)

	psTotalPotRe    = regexp.MustCompile(`^Total pot (\$?[\d.,]+).*?\| Rake (\$?[\d.,]+)`)
	psSummarySeatRe = regexp.MustCompile(`^Seat (\d+): (.+?)(?: \((button|small blind|big blind)\))? (folded|collected|showed|mucked)(.*)$`)
)

// ParsePokerStars implements the parse contract for PokerStars exports.
func ParsePokerStars(raw string) ([]hand.Hand, []*ParseError) {
	var hands []hand.Hand
	var errs []*ParseError
	for _, block := range splitBlocks(raw) {
		h, err := parsePokerStarsBlock(block)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		hands = append(hands, *h)
	}
	return hands, errs
}

func parsePokerStarsBlock(block string) (*hand.Hand, *ParseError) {
	fail := func(id, format string, args ...any) *ParseError {
		return &ParseError{
			Platform: hand.PlatformPokerStars,
			HandID:   id,
			Reason:   fmt.Sprintf(format, args...),
		}
	}

	lines := strings.Split(block, "\n")
	if len(lines) == 0 {
		return nil, fail("", "empty hand block")
	}

	m := psHeaderRe.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if m == nil {
		return nil, fail("", "unrecognized header line %q", strings.TrimSpace(lines[0]))
	}

	h := &hand.Hand{
		Platform: hand.PlatformPokerStars,
		ID:       m[1],
		Timezone: m[5],
		RawText:  block,
	}
	if ts, err := time.Parse("2006/01/02 15:04:05", m[3]+" "+m[4]); err == nil {
		h.Timestamp = ts
	}
	if err := parsePokerStarsGameInfo(h, m[2]); err != nil {
		return nil, fail(h.ID, "header: %v", err)
	}

	var (
		tracker      *stackTracker
		street       = hand.Preflop
		inSummary    bool
		sawTable     bool
		sawTotalPot  bool
		sawShowdown  bool
		folded       = map[string]bool{}
		collected    = map[string]int64{}
		shown        = map[string][]string{}
		atShowdown   = map[string]bool{}
		summaryBoard []string
	)

	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "*** HOLE CARDS ***"):
			continue
		case strings.HasPrefix(line, "*** SHOW DOWN ***"):
			sawShowdown = true
			continue
		case strings.HasPrefix(line, "*** SUMMARY ***"):
			inSummary = true
			continue
		}

		if m := psFlopRe.FindStringSubmatch(line); m != nil && !inSummary {
			cards, err := parseCardList(m[1])
			if err != nil {
				return nil, fail(h.ID, "flop: %v", err)
			}
			h.Board = cards
			street = hand.Flop
			if tracker != nil {
				tracker.advance(street)
			}
			continue
		}
		if m := psTurnRe.FindStringSubmatch(line); m != nil && !inSummary {
			cards, err := parseCardList(m[1])
			if err != nil {
				return nil, fail(h.ID, "turn: %v", err)
			}
			h.Board = append(h.Board, cards...)
			street = hand.Turn
			if tracker != nil {
				tracker.advance(street)
			}
			continue
		}
		if m := psRiverRe.FindStringSubmatch(line); m != nil && !inSummary {
			cards, err := parseCardList(m[1])
			if err != nil {
				return nil, fail(h.ID, "river: %v", err)
			}
			h.Board = append(h.Board, cards...)
			street = hand.River
			if tracker != nil {
				tracker.advance(street)
			}
			continue
		}

		if inSummary {
			if m := psTotalPotRe.FindStringSubmatch(line); m != nil {
				pot, err := parseMoney(m[1])
				if err != nil {
					return nil, fail(h.ID, "total pot: %v", err)
				}
				rake, err := parseMoney(m[2])
				if err != nil {
					return nil, fail(h.ID, "rake: %v", err)
				}
				h.Pot, h.Rake = pot, rake
				sawTotalPot = true
				continue
			}
			if strings.HasPrefix(line, "Board [") {
				run := strings.TrimSuffix(strings.TrimPrefix(line, "Board ["), "]")
				summaryBoard = strings.Fields(run)
				continue
			}
			if m := psSummarySeatRe.FindStringSubmatch(line); m != nil {
				player := m[2]
				switch m[4] {
				case "folded":
					folded[player] = true
				case "showed", "mucked":
					atShowdown[player] = true
				}
				continue
			}
			continue
		}

		if m := psTableRe.FindStringSubmatch(line); m != nil {
			h.TableName = m[1]
			h.TableSize, _ = strconv.Atoi(m[2])
			h.ButtonSeat, _ = strconv.Atoi(m[3])
			sawTable = true
			continue
		}
		if m := psSeatRe.FindStringSubmatch(line); m != nil {
			seatNum, _ := strconv.Atoi(m[1])
			stack, err := parseMoney(m[3])
			if err != nil {
				return nil, fail(h.ID, "seat %d stack: %v", seatNum, err)
			}
			h.Seats = append(h.Seats, hand.Seat{Number: seatNum, Player: m[2], Stack: stack})
			continue
		}
		if m := psPostRe.FindStringSubmatch(line); m != nil {
			if tracker == nil {
				tracker = newStackTracker(h.Seats)
			}
			amount, err := parseMoney(m[3])
			if err != nil {
				return nil, fail(h.ID, "post: %v", err)
			}
			kind := hand.PostSmallBlind
			switch m[2] {
			case "big blind":
				kind = hand.PostBigBlind
			case "the ante":
				kind = hand.PostAnte
			case "small & big blinds":
				kind = hand.PostDead
			}
			var after int64
			if kind == hand.PostAnte {
				after = tracker.payAnte(m[1], amount)
			} else {
				after = tracker.pay(m[1], amount)
			}
			h.Posts = append(h.Posts, hand.Post{Player: m[1], Kind: kind, Amount: amount, StackAfter: after})
			continue
		}
		if m := psDealtRe.FindStringSubmatch(line); m != nil {
			cards, err := parseCardList(m[2])
			if err != nil {
				return nil, fail(h.ID, "hole cards: %v", err)
			}
			h.Hero = m[1]
			h.HeroCards = cards
			continue
		}
		if m := psUncalledRe.FindStringSubmatch(line); m != nil {
			amount, err := parseMoney(m[1])
			if err != nil {
				return nil, fail(h.ID, "uncalled bet: %v", err)
			}
			h.Returns = append(h.Returns, hand.Refund{Player: m[2], Amount: amount})
			if tracker != nil {
				tracker.refund(m[2], amount)
			}
			continue
		}
		if m := psCollectedRe.FindStringSubmatch(line); m != nil {
			amount, err := parseMoney(m[2])
			if err != nil {
				return nil, fail(h.ID, "collected: %v", err)
			}
			collected[m[1]] += amount
			continue
		}
		if m := psShowsRe.FindStringSubmatch(line); m != nil {
			shown[m[1]] = strings.Fields(m[2])
			atShowdown[m[1]] = true
			continue
		}
		if m := psMucksRe.FindStringSubmatch(line); m != nil {
			atShowdown[m[1]] = true
			continue
		}
		if m := psActionRe.FindStringSubmatch(line); m != nil {
			if tracker == nil {
				tracker = newStackTracker(h.Seats)
			}
			action, err := buildAction(tracker, street, m[1], m[2], m[3], m[4], m[5] != "")
			if err != nil {
				return nil, fail(h.ID, "action %q: %v", line, err)
			}
			if action.Type == hand.Fold {
				folded[m[1]] = true
			}
			h.Actions = append(h.Actions, action)
			continue
		}
		// Table chatter, connection notices and similar lines are ignored.
	}

	if !sawTable {
		return nil, fail(h.ID, "missing table line")
	}
	if len(h.Seats) < 2 {
		return nil, fail(h.ID, "seat list has %d seats", len(h.Seats))
	}
	if !sawTotalPot {
		return nil, fail(h.ID, "summary missing total pot")
	}
	if len(summaryBoard) > len(h.Board) {
		return nil, fail(h.ID, "summary board has %d cards but only %d were dealt", len(summaryBoard), len(h.Board))
	}

	finishResults(h, folded, collected, shown, atShowdown, sawShowdown)
	return h, nil
}

// parsePokerStarsGameInfo decodes the game description between the hand id
// and the timestamp: either a cash game with stakes or a tournament level.
func parsePokerStarsGameInfo(h *hand.Hand, info string) error {
	if m := psTourneyRe.FindStringSubmatch(info); m != nil {
		small, err := strconv.ParseInt(m[4], 10, 64)
		if err != nil {
			return fmt.Errorf("small blind: %w", err)
		}
		big, err := strconv.ParseInt(m[5], 10, 64)
		if err != nil {
			return fmt.Errorf("big blind: %w", err)
		}
		h.Format = hand.FormatTournament
		h.GameType = m[3]
		h.Stakes = m[2]
		h.Blinds = hand.Blinds{Small: small * 100, Big: big * 100}
		return nil
	}
	if m := psCashRe.FindStringSubmatch(info); m != nil {
		small, err := parseMoney(m[2])
		if err != nil {
			return fmt.Errorf("small blind: %w", err)
		}
		big, err := parseMoney(m[3])
		if err != nil {
			return fmt.Errorf("big blind: %w", err)
		}
		h.Format = hand.FormatCash
		h.GameType = m[1]
		h.Stakes = m[2] + "/" + m[3]
		h.Currency = m[4]
		h.PlayMoney = !strings.HasPrefix(m[2], "$") && !strings.HasPrefix(m[2], "€")
		h.Blinds = hand.Blinds{Small: small, Big: big}
		return nil
	}
	return fmt.Errorf("unrecognized game info %q", info)
}

// buildAction converts a matched action line into a canonical Action,
// resolving raise-to totals into incremental amounts via the tracker.
func buildAction(t *stackTracker, street hand.Street, player, verb, amountTok, toTok string, allIn bool) (hand.Action, error) {
	a := hand.Action{Player: player, Street: street, AllIn: allIn}
	switch verb {
	case "folds":
		a.Type = hand.Fold
		a.StackAfter = t.stacks[player]
	case "checks":
		a.Type = hand.Check
		a.StackAfter = t.stacks[player]
	case "calls", "bets":
		if verb == "calls" {
			a.Type = hand.Call
		} else {
			a.Type = hand.Bet
		}
		amount, err := parseMoney(amountTok)
		if err != nil {
			return a, err
		}
		a.Amount = amount
		a.To = t.street[player] + amount
		a.StackAfter = t.pay(player, amount)
	case "raises":
		a.Type = hand.Raise
		to, err := parseMoney(toTok)
		if err != nil {
			return a, err
		}
		a.To = to
		a.Amount = t.toIncremental(player, to)
		a.StackAfter = t.pay(player, a.Amount)
	default:
		return a, fmt.Errorf("unknown verb %q", verb)
	}
	return a, nil
}

// finishResults assembles per-seat outcomes from the collected evidence:
// fold tracking, collected lines, showdown reveals and the summary section.
func finishResults(h *hand.Hand, folded map[string]bool, collected map[string]int64, shown map[string][]string, atShowdown map[string]bool, sawShowdown bool) {
	h.Showdown = sawShowdown || len(atShowdown) > 0
	for _, seat := range h.Seats {
		res := hand.Result{
			Player:         seat.Player,
			Seat:           seat.Number,
			Collected:      collected[seat.Player],
			Folded:         folded[seat.Player],
			WentToShowdown: atShowdown[seat.Player],
		}
		if cards, ok := shown[seat.Player]; ok {
			if parsed, err := parseCardList(strings.Join(cards, " ")); err == nil {
				res.ShownCards = parsed
			}
		}
		h.Results = append(h.Results, res)
	}
	if h.Hero != "" {
		if seat := h.SeatFor(h.Hero); seat != nil {
			h.HeroSeat = seat.Number
			h.Position = hand.PositionFor(h.Seats, h.ButtonSeat, seat.Number)
		}
	}
}
