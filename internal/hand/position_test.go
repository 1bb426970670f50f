package hand

import (
	"testing"

	"handtracker/internal/deck"
)

func seatsNumbered(nums ...int) []Seat {
	seats := make([]Seat, len(nums))
	for i, n := range nums {
		seats[i] = Seat{Number: n, Player: string(rune('a' + i))}
	}
	return seats
}

func TestPositionFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		seats  []Seat
		button int
		seat   int
		want   Position
	}{
		{"heads-up button", seatsNumbered(1, 2), 1, 1, PositionButton},
		{"heads-up big blind", seatsNumbered(1, 2), 1, 2, PositionBigBlind},
		{"three-handed sb", seatsNumbered(1, 2, 3), 1, 2, PositionSmallBlind},
		{"three-handed bb", seatsNumbered(1, 2, 3), 1, 3, PositionBigBlind},
		{"six-max utg", seatsNumbered(1, 2, 3, 4, 5, 6), 1, 4, PositionUTG},
		{"six-max hijack", seatsNumbered(1, 2, 3, 4, 5, 6), 1, 5, PositionHijack},
		{"six-max cutoff", seatsNumbered(1, 2, 3, 4, 5, 6), 1, 6, PositionCutoff},
		{"wraps around button", seatsNumbered(1, 2, 3, 4, 5, 6), 5, 1, PositionBigBlind},
		{"nine-handed mp", seatsNumbered(1, 2, 3, 4, 5, 6, 7, 8, 9), 1, 6, PositionMP},
		{"empty seat number", seatsNumbered(1, 2, 3), 1, 7, PositionUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := PositionFor(tt.seats, tt.button, tt.seat); got != tt.want {
				t.Errorf("PositionFor(button=%d, seat=%d) = %q, want %q", tt.button, tt.seat, got, tt.want)
			}
		})
	}
}

func TestContributedAndNet(t *testing.T) {
	t.Parallel()

	h := &Hand{
		Seats: []Seat{
			{Number: 1, Player: "hero", Stack: 5000},
			{Number: 2, Player: "villain", Stack: 5000},
		},
		Posts: []Post{
			{Player: "hero", Kind: PostSmallBlind, Amount: 25},
			{Player: "villain", Kind: PostBigBlind, Amount: 50},
		},
		Actions: []Action{
			{Player: "hero", Street: Preflop, Type: Raise, Amount: 175, To: 200},
			{Player: "villain", Street: Preflop, Type: Fold},
		},
		Returns: []Refund{{Player: "hero", Amount: 150}},
		Results: []Result{{Player: "hero", Seat: 1, Collected: 100}},
		Hero:    "hero",
	}

	if got := h.Contributed("hero"); got != 50 {
		t.Errorf("Contributed(hero) = %d, want 50", got)
	}
	if got := h.Contributed("villain"); got != 50 {
		t.Errorf("Contributed(villain) = %d, want 50", got)
	}
	if got := h.HeroNet(); got != 50 {
		t.Errorf("HeroNet() = %d, want 50", got)
	}
	if got := h.Net("villain"); got != -50 {
		t.Errorf("Net(villain) = %d, want -50", got)
	}
}

func TestStreetDealt(t *testing.T) {
	t.Parallel()

	h := &Hand{}
	if !h.StreetDealt(Preflop) {
		t.Error("preflop must always be dealt")
	}
	if h.StreetDealt(Flop) {
		t.Error("flop dealt with empty board")
	}

	cards := []string{"Ah", "Kd", "7c", "2s", "9h"}
	for i, street := range []Street{Flop, Flop, Flop, Turn, River} {
		c, err := deck.Parse(cards[i])
		if err != nil {
			t.Fatal(err)
		}
		h.Board = append(h.Board, c)
		if i >= 2 && !h.StreetDealt(street) {
			t.Errorf("street %s not dealt with %d board cards", street, len(h.Board))
		}
	}
	if h.StreetDealt(Street(99)) {
		t.Error("unknown street reported as dealt")
	}
}
