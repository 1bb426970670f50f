package hand

import "sort"

// Position is the subject's table position label for a hand.
type Position string

const (
	PositionUnknown    Position = ""
	PositionButton     Position = "BTN"
	PositionSmallBlind Position = "SB"
	PositionBigBlind   Position = "BB"
	PositionUTG        Position = "UTG"
	PositionUTG1       Position = "UTG+1"
	PositionUTG2       Position = "UTG+2"
	PositionMP         Position = "MP"
	PositionMP1        Position = "MP+1"
	PositionHijack     Position = "HJ"
	PositionCutoff     Position = "CO"
)

// middleNames lists the labels between the big blind and the button in
// preflop acting order, keyed by the number of players at the table.
var middleNames = map[int][]Position{
	4:  {PositionUTG},
	5:  {PositionUTG, PositionCutoff},
	6:  {PositionUTG, PositionHijack, PositionCutoff},
	7:  {PositionUTG, PositionMP, PositionHijack, PositionCutoff},
	8:  {PositionUTG, PositionUTG1, PositionMP, PositionHijack, PositionCutoff},
	9:  {PositionUTG, PositionUTG1, PositionMP, PositionMP1, PositionHijack, PositionCutoff},
	10: {PositionUTG, PositionUTG1, PositionUTG2, PositionMP, PositionMP1, PositionHijack, PositionCutoff},
}

// PositionFor derives the position label for the seat number, given the
// occupied seats and the button seat. Heads-up the button posts the small
// blind and is labelled BTN.
func PositionFor(seats []Seat, buttonSeat, seatNumber int) Position {
	numbers := make([]int, 0, len(seats))
	for _, s := range seats {
		numbers = append(numbers, s.Number)
	}
	sort.Ints(numbers)

	n := len(numbers)
	if n < 2 {
		return PositionUnknown
	}

	// Rotate so the button comes first, then walk clockwise.
	start := 0
	for i, num := range numbers {
		if num == buttonSeat {
			start = i
			break
		}
	}

	idx := -1
	for i := 0; i < n; i++ {
		if numbers[(start+i)%n] == seatNumber {
			idx = i
			break
		}
	}
	if idx < 0 {
		return PositionUnknown
	}

	if n == 2 {
		if idx == 0 {
			return PositionButton
		}
		return PositionBigBlind
	}

	switch idx {
	case 0:
		return PositionButton
	case 1:
		return PositionSmallBlind
	case 2:
		return PositionBigBlind
	}

	names := middleNames[n]
	if names == nil {
		names = middleNames[10]
	}
	mi := idx - 3
	if mi >= len(names) {
		return PositionUnknown
	}
	return names[mi]
}
