// Package parser turns raw hand history text into canonical hand records.
//
// Each supported platform grammar is an independent pure function
// implementing the same contract: text in, zero or more hands out, with
// per-hand failures collected rather than thrown. The platform tag from
// the detector selects the grammar; there is no inheritance between them.
package parser

import (
	"fmt"
	"strings"

	"handtracker/internal/deck"
	"handtracker/internal/hand"
)

// Func is the shared parse contract. It receives a blob that may contain
// multiple concatenated hands and parses each block independently: a
// malformed block yields a ParseError without aborting the others.
type Func func(raw string) ([]hand.Hand, []*ParseError)

// ParseError reports one hand block that could not be parsed. It carries
// the hand id when the header was readable and a human-readable reason.
type ParseError struct {
	Platform hand.Platform
	HandID   string
	Reason   string
}

func (e *ParseError) Error() string {
	id := e.HandID
	if id == "" {
		id = "?"
	}
	return fmt.Sprintf("parser: %s hand %s: %s", e.Platform, id, e.Reason)
}

// ForPlatform returns the grammar for the given platform tag.
func ForPlatform(p hand.Platform) (Func, bool) {
	switch p {
	case hand.PlatformPokerStars:
		return ParsePokerStars, true
	case hand.PlatformGGPoker:
		return ParseGGPoker, true
	default:
		return nil, false
	}
}

// headerAnchors mirror the detector's anchors; used for block splitting
// and the cheap pre-count that feeds batch progress estimates.
var headerAnchors = []string{
	"PokerStars Hand #",
	"PokerStars Game #",
	"PokerStars Zoom Hand #",
	"Poker Hand #",
}

// CountBlocks counts hand-boundary markers in a blob. It is a rough,
// cheap estimate used only for progress reporting.
func CountBlocks(raw string) int {
	count := 0
	for _, line := range strings.Split(raw, "\n") {
		if isHeaderLine(strings.TrimSpace(line)) {
			count++
		}
	}
	return count
}

func isHeaderLine(line string) bool {
	for _, anchor := range headerAnchors {
		if strings.HasPrefix(line, anchor) {
			return true
		}
	}
	return false
}

// splitBlocks splits a multi-hand export into individual hand blocks,
// each starting at a header line.
func splitBlocks(raw string) []string {
	var blocks []string
	var cur []string
	flush := func() {
		if len(cur) == 0 {
			return
		}
		block := strings.TrimSpace(strings.Join(cur, "\n"))
		if block != "" {
			blocks = append(blocks, block)
		}
		cur = cur[:0]
	}
	for _, line := range strings.Split(raw, "\n") {
		if isHeaderLine(strings.TrimSpace(line)) {
			flush()
		}
		cur = append(cur, line)
	}
	flush()
	return blocks
}

// parseMoney converts a money token like "$2.25", "0.50" or "1,500" into
// cents. Play-money exports omit the currency sign.
func parseMoney(token string) (int64, error) {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "$")
	token = strings.TrimPrefix(token, "€")
	token = strings.ReplaceAll(token, ",", "")
	if token == "" {
		return 0, fmt.Errorf("empty amount")
	}

	whole := token
	frac := ""
	if i := strings.IndexByte(token, '.'); i >= 0 {
		whole, frac = token[:i], token[i+1:]
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has sub-cent precision", token)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	var cents int64
	for _, part := range []string{whole, frac} {
		for _, ch := range part {
			if ch < '0' || ch > '9' {
				return 0, fmt.Errorf("malformed amount %q", token)
			}
			cents = cents*10 + int64(ch-'0')
		}
	}
	return cents, nil
}

// parseCardList parses a bracketed card run like "Ah Kd" (brackets already
// stripped) into cards.
func parseCardList(run string) ([]deck.Card, error) {
	fields := strings.Fields(strings.TrimSpace(run))
	if len(fields) == 0 {
		return nil, nil
	}
	return deck.ParseAll(fields)
}

// stackTracker follows per-player stacks and per-street contributions as a
// block's action lines replay, so raise lines ("raises $1.50 to $2") can
// be converted to incremental amounts and StackAfter recorded per action.
type stackTracker struct {
	stacks  map[string]int64
	street  map[string]int64
	allIn   map[string]bool
	current hand.Street
}

func newStackTracker(seats []hand.Seat) *stackTracker {
	t := &stackTracker{
		stacks: make(map[string]int64, len(seats)),
		street: make(map[string]int64, len(seats)),
		allIn:  make(map[string]bool),
	}
	for _, s := range seats {
		t.stacks[s.Player] = s.Stack
	}
	return t
}

// advance resets street-level contributions when a new street is dealt.
func (t *stackTracker) advance(s hand.Street) {
	t.current = s
	t.street = make(map[string]int64, len(t.stacks))
}

// pay deducts an incremental amount from the player's stack and returns
// the stack after the deduction.
func (t *stackTracker) pay(player string, amount int64) int64 {
	t.stacks[player] -= amount
	t.street[player] += amount
	if t.stacks[player] < 0 {
		t.stacks[player] = 0
	}
	return t.stacks[player]
}

// payAnte deducts an ante without crediting the street bet level; antes
// never count toward what a raise must be measured against.
func (t *stackTracker) payAnte(player string, amount int64) int64 {
	t.stacks[player] -= amount
	if t.stacks[player] < 0 {
		t.stacks[player] = 0
	}
	return t.stacks[player]
}

// refund restores an uncalled bet to the player's stack.
func (t *stackTracker) refund(player string, amount int64) {
	t.stacks[player] += amount
}

// toIncremental converts a raise-to total into the incremental amount the
// player still owes on this street.
func (t *stackTracker) toIncremental(player string, to int64) int64 {
	inc := to - t.street[player]
	if inc < 0 {
		inc = 0
	}
	return inc
}
