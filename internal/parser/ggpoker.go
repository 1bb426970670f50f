package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"handtracker/internal/hand"
)

// GGPoker export grammar. Same section skeleton as PokerStars but with its
// own conventions: alphanumeric hand ids, "posts ante" without the
// article, a single-word SHOWDOWN marker, "won" instead of "collected" in
// seat summaries, and a jackpot contribution in the pot line.
var (
	ggHeaderRe  = regexp.MustCompile(`^Poker Hand #([A-Z]{0,2}\d+):\s*(.+?) - (\d{4}/\d{2}/\d{2}) (\d{1,2}:\d{2}:\d{2})\s*$`)
	ggTourneyRe = regexp.MustCompile(`^Tournament #(\d+), (.+?) - Level ?\d+ ?\((\d+)/(\d+)\)$`)
	ggCashRe    = regexp.MustCompile(`^(.+?) \((\$?[\d.,]+)/(\$?[\d.,]+)\)$`)

	ggTableRe     = regexp.MustCompile(`^Table '(.+)' (\d+)-max Seat #(\d+) is the button$`)
	ggSeatRe      = regexp.MustCompile(`^Seat (\d+): (.+?) \((\$?[\d.,]+) in chips\)$`)
	ggPostRe      = regexp.MustCompile(`^(.+?): posts (small blind|big blind|ante|missed blind) (\$?[\d.,]+)( and is all-in)?$`)
	ggDealtRe     = regexp.MustCompile(`^Dealt to (.+?)(?: \[([^\]]+)\])?$`)
	ggActionRe    = regexp.MustCompile(`^(.+?): (folds|checks|calls|bets|raises)(?: (\$?[\d.,]+))?(?: to (\$?[\d.,]+))?( and is all-in)?$`)
	ggUncalledRe  = regexp.MustCompile(`^Uncalled bet \((\$?[\d.,]+)\) returned to (.+)$`)
	ggCollectedRe = regexp.MustCompile(`^(.+?) collected (\$?[\d.,]+) from pot`)
	ggShowsRe     = regexp.MustCompile(`^(.+?): shows \[([^\]]+)\]`)

	ggFlopRe  = regexp.MustCompile(`^\*\*\* FLOP \*\*\* \[([^\]]+)\]`)
	ggTurnRe  = regexp.MustCompile(`^\*\*\* TURN \*\*\* \[[^\]]+\] \[([^\]]+)\]`)
	ggRiverRe = regexp.MustCompile(`^\*\*\* RIVER \*\*\* \[[^\]]+\] \[([^\]]+)\]`)

	ggTotalPotRe    = regexp.MustCompile(`^Total pot (\$?[\d.,]+) \| Rake (\$?[\d.,]+)(?: \| Jackpot (\$?[\d.,]+))?(?: \| Bingo \$?[\d.,]+)?`)
	ggSummarySeatRe = regexp.MustCompile(`^Seat (\d+): (.+?)(?: \((button|small blind|big blind)\))? (folded|won|showed|mucked)(.*)$`)
)

// ParseGGPoker implements the parse contract for GGPoker exports.
func ParseGGPoker(raw string) ([]hand.Hand, []*ParseError) {
	var hands []hand.Hand
	var errs []*ParseError
	for _, block := range splitBlocks(raw) {
		h, err := parseGGPokerBlock(block)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		hands = append(hands, *h)
	}
	return hands, errs
}

func parseGGPokerBlock(block string) (*hand.Hand, *ParseError) {
	fail := func(id, format string, args ...any) *ParseError {
		return &ParseError{
			Platform: hand.PlatformGGPoker,
			HandID:   id,
			Reason:   fmt.Sprintf(format, args...),
		}
	}

	lines := strings.Split(block, "\n")
	if len(lines) == 0 {
		return nil, fail("", "empty hand block")
	}

	m := ggHeaderRe.FindStringSubmatch(strings.TrimSpace(lines[0]))
	if m == nil {
		return nil, fail("", "unrecognized header line %q", strings.TrimSpace(lines[0]))
	}

	h := &hand.Hand{
		Platform: hand.PlatformGGPoker,
		ID:       m[1],
		RawText:  block,
	}
	if ts, err := time.Parse("2006/01/02 15:04:05", m[3]+" "+m[4]); err == nil {
		h.Timestamp = ts
	}
	if err := parseGGPokerGameInfo(h, m[2]); err != nil {
		return nil, fail(h.ID, "header: %v", err)
	}

	var (
		tracker     *stackTracker
		street      = hand.Preflop
		inSummary   bool
		sawTable    bool
		sawTotalPot bool
		sawShowdown bool
		folded      = map[string]bool{}
		collected   = map[string]int64{}
		shown       = map[string][]string{}
		atShowdown  = map[string]bool{}
	)

	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "*** HOLE CARDS ***"):
			continue
		case strings.HasPrefix(line, "*** SHOWDOWN ***"):
			sawShowdown = true
			continue
		case strings.HasPrefix(line, "*** SUMMARY ***"):
			inSummary = true
			continue
		}

		if m := ggFlopRe.FindStringSubmatch(line); m != nil && !inSummary {
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
		if m := ggTurnRe.FindStringSubmatch(line); m != nil && !inSummary {
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
		if m := ggRiverRe.FindStringSubmatch(line); m != nil && !inSummary {
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
			if m := ggTotalPotRe.FindStringSubmatch(line); m != nil {
				pot, err := parseMoney(m[1])
				if err != nil {
					return nil, fail(h.ID, "total pot: %v", err)
				}
				rake, err := parseMoney(m[2])
				if err != nil {
					return nil, fail(h.ID, "rake: %v", err)
				}
				h.Pot, h.Rake = pot, rake
				if m[3] != "" {
					jackpot, err := parseMoney(m[3])
					if err != nil {
						return nil, fail(h.ID, "jackpot: %v", err)
					}
					h.Jackpot = jackpot
				}
				sawTotalPot = true
				continue
			}
			if m := ggSummarySeatRe.FindStringSubmatch(line); m != nil {
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

		if m := ggTableRe.FindStringSubmatch(line); m != nil {
			h.TableName = m[1]
			h.TableSize, _ = strconv.Atoi(m[2])
			h.ButtonSeat, _ = strconv.Atoi(m[3])
			sawTable = true
			continue
		}
		if m := ggSeatRe.FindStringSubmatch(line); m != nil {
			seatNum, _ := strconv.Atoi(m[1])
			stack, err := parseMoney(m[3])
			if err != nil {
				return nil, fail(h.ID, "seat %d stack: %v", seatNum, err)
			}
			h.Seats = append(h.Seats, hand.Seat{Number: seatNum, Player: m[2], Stack: stack})
			continue
		}
		if m := ggPostRe.FindStringSubmatch(line); m != nil {
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
			case "ante":
				kind = hand.PostAnte
			case "missed blind":
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
		if m := ggUncalledRe.FindStringSubmatch(line); m != nil {
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
		if m := ggCollectedRe.FindStringSubmatch(line); m != nil {
			amount, err := parseMoney(m[2])
			if err != nil {
				return nil, fail(h.ID, "collected: %v", err)
			}
			collected[m[1]] += amount
			continue
		}
		if m := ggShowsRe.FindStringSubmatch(line); m != nil {
			shown[m[1]] = strings.Fields(m[2])
			atShowdown[m[1]] = true
			continue
		}
		if m := ggActionRe.FindStringSubmatch(line); m != nil {
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
		if m := ggDealtRe.FindStringSubmatch(line); m != nil {
			// GGPoker emits a Dealt line for every seat; only the hero's
			// carries cards.
			if m[2] == "" {
				continue
			}
			cards, err := parseCardList(m[2])
			if err != nil {
				return nil, fail(h.ID, "hole cards: %v", err)
			}
			h.Hero = m[1]
			h.HeroCards = cards
			continue
		}
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

	finishResults(h, folded, collected, shown, atShowdown, sawShowdown)
	return h, nil
}

func parseGGPokerGameInfo(h *hand.Hand, info string) error {
	if m := ggTourneyRe.FindStringSubmatch(info); m != nil {
		small, err := strconv.ParseInt(m[3], 10, 64)
		if err != nil {
			return fmt.Errorf("small blind: %w", err)
		}
		big, err := strconv.ParseInt(m[4], 10, 64)
		if err != nil {
			return fmt.Errorf("big blind: %w", err)
		}
		h.Format = hand.FormatTournament
		h.GameType = m[2]
		h.Stakes = "Tournament #" + m[1]
		h.Blinds = hand.Blinds{Small: small * 100, Big: big * 100}
		return nil
	}
	if m := ggCashRe.FindStringSubmatch(info); m != nil {
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
		h.Currency = "USD"
		h.PlayMoney = !strings.HasPrefix(m[2], "$")
		h.Blinds = hand.Blinds{Small: small, Big: big}
		return nil
	}
	return fmt.Errorf("unrecognized game info %q", info)
}
