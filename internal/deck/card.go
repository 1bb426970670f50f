package deck

import "fmt"

// Suit represents a card suit using the lowercase letter form found in
// hand history exports ("s", "h", "d", "c").
type Suit byte

const (
	Spades   Suit = 's'
	Hearts   Suit = 'h'
	Diamonds Suit = 'd'
	Clubs    Suit = 'c'
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades, Hearts, Diamonds, Clubs:
		return string(byte(s))
	default:
		return "?"
	}
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Nine:
		return string(byte('0' + byte(r)))
	case r == Ten:
		return "T"
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents a playing card as it appears in hand history text,
// e.g. "Ah" for the ace of hearts.
type Card struct {
	Rank Rank
	Suit Suit
}

// String returns the two-character text form of a card (e.g. "Ah")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Parse converts a two-character token like "Td" into a Card.
func Parse(token string) (Card, error) {
	if len(token) != 2 {
		return Card{}, fmt.Errorf("deck: malformed card %q", token)
	}

	var rank Rank
	switch token[0] {
	case 'A':
		rank = Ace
	case 'K':
		rank = King
	case 'Q':
		rank = Queen
	case 'J':
		rank = Jack
	case 'T':
		rank = Ten
	default:
		if token[0] < '2' || token[0] > '9' {
			return Card{}, fmt.Errorf("deck: unknown rank in %q", token)
		}
		rank = Rank(token[0] - '0')
	}

	suit := Suit(token[1])
	switch suit {
	case Spades, Hearts, Diamonds, Clubs:
	default:
		return Card{}, fmt.Errorf("deck: unknown suit in %q", token)
	}

	return Card{Rank: rank, Suit: suit}, nil
}

// ParseAll converts a slice of card tokens, failing on the first malformed one.
func ParseAll(tokens []string) ([]Card, error) {
	cards := make([]Card, 0, len(tokens))
	for _, tok := range tokens {
		card, err := Parse(tok)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// Strings renders cards back to their text tokens.
func Strings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
