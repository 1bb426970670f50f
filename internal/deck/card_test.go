package deck

import "testing"

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Card
	}{
		{"Ah", Card{Rank: Ace, Suit: Hearts}},
		{"Td", Card{Rank: Ten, Suit: Diamonds}},
		{"2c", Card{Rank: Two, Suit: Clubs}},
		{"Ks", Card{Rank: King, Suit: Spades}},
		{"9h", Card{Rank: Nine, Suit: Hearts}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if got.String() != tt.in {
			t.Errorf("Parse(%q).String() = %q", tt.in, got.String())
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "A", "Ahh", "1h", "Ax", "ah"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) accepted malformed card", in)
		}
	}
}

func TestParseAllFailsOnFirstBadToken(t *testing.T) {
	t.Parallel()

	if _, err := ParseAll([]string{"Ah", "Xx", "Kd"}); err == nil {
		t.Fatal("ParseAll accepted a bad token")
	}

	cards, err := ParseAll([]string{"Ah", "Kd", "7c"})
	if err != nil {
		t.Fatalf("ParseAll returned error: %v", err)
	}
	got := Strings(cards)
	want := []string{"Ah", "Kd", "7c"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Strings[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
