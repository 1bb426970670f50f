// Package validate checks structural and arithmetic consistency of parsed
// hands before they are exposed to the aggregator, and owns duplicate
// detection so re-importing overlapping files stays idempotent.
package validate

import (
	"fmt"
	"sync"

	"handtracker/internal/hand"
)

// Epsilon is the absolute tolerance, in cents, for pot and stack
// arithmetic. Rake and jackpot splits can round sub-cent amounts per
// seat, so exact equality is not achievable across platforms.
const Epsilon int64 = 1

// ValidationError reports a structurally parsed hand that is arithmetically
// or logically inconsistent. It is collected as a warning, never thrown
// past the batch boundary.
type ValidationError struct {
	HandID string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate: hand %s: %s", e.HandID, e.Reason)
}

// Outcome classifies the result of validating one hand.
type Outcome int

const (
	Accepted Outcome = iota
	Duplicate
	Rejected
)

// Registry tracks accepted hand keys for duplicate detection. It is safe
// for concurrent use and is meant to be shared across batches so the same
// hand re-imported later is a no-op, not an error.
type Registry struct {
	mu   sync.Mutex
	seen map[hand.Key]struct{}
}

// NewRegistry creates an empty duplicate registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[hand.Key]struct{})}
}

// observe records the key and reports whether it was new.
func (r *Registry) observe(key hand.Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[key]; ok {
		return false
	}
	r.seen[key] = struct{}{}
	return true
}

// Len returns the number of distinct hands observed.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// Validator validates hands for one owning user.
type Validator struct {
	user     string
	registry *Registry
}

// New creates a validator that records accepted hands in the registry.
func New(user string, registry *Registry) *Validator {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Validator{user: user, registry: registry}
}

// Validate runs the checks in order: action ordering, seat references,
// stack arithmetic, then duplicate detection. Only hands that pass every
// structural check are recorded in the duplicate registry.
func (v *Validator) Validate(h *hand.Hand) (Outcome, *ValidationError) {
	if err := Check(h); err != nil {
		return Rejected, err
	}
	key := hand.Key{User: v.user, Platform: h.Platform, HandID: h.ID}
	if !v.registry.observe(key) {
		return Duplicate, nil
	}
	return Accepted, nil
}

// Check runs the pure structural and arithmetic checks on a hand without
// touching duplicate state.
func Check(h *hand.Hand) *ValidationError {
	if err := checkOrdering(h); err != nil {
		return err
	}
	if err := checkSeats(h); err != nil {
		return err
	}
	return checkArithmetic(h)
}

// checkOrdering verifies streets appear in dealing order and that no
// action happens on a street whose cards were never revealed.
func checkOrdering(h *hand.Hand) *ValidationError {
	prev := hand.Preflop
	for i, a := range h.Actions {
		if a.Street < prev {
			return &ValidationError{HandID: h.ID, Reason: fmt.Sprintf(
				"action %d on %s after action on %s", i, a.Street, prev)}
		}
		if !h.StreetDealt(a.Street) {
			return &ValidationError{HandID: h.ID, Reason: fmt.Sprintf(
				"action %d on %s but that street was never dealt", i, a.Street)}
		}
		prev = a.Street
	}
	return nil
}

// checkSeats verifies every referenced player occupies a seat.
func checkSeats(h *hand.Hand) *ValidationError {
	seated := make(map[string]struct{}, len(h.Seats))
	for _, s := range h.Seats {
		seated[s.Player] = struct{}{}
	}
	ref := func(kind, player string) *ValidationError {
		if _, ok := seated[player]; !ok {
			return &ValidationError{HandID: h.ID, Reason: fmt.Sprintf(
				"%s references unseated player %q", kind, player)}
		}
		return nil
	}
	for _, p := range h.Posts {
		if err := ref("post", p.Player); err != nil {
			return err
		}
	}
	for _, a := range h.Actions {
		if err := ref("action", a.Player); err != nil {
			return err
		}
	}
	for _, r := range h.Returns {
		if err := ref("refund", r.Player); err != nil {
			return err
		}
	}
	for _, r := range h.Results {
		if err := ref("result", r.Player); err != nil {
			return err
		}
	}
	return nil
}

// checkArithmetic replays the action sequence street by street and checks
// that recorded stacks, the pot, and the distribution all reconcile
// within Epsilon.
func checkArithmetic(h *hand.Hand) *ValidationError {
	stacks := make(map[string]int64, len(h.Seats))
	for _, s := range h.Seats {
		stacks[s.Player] = s.Stack
	}

	var wagered int64
	for _, p := range h.Posts {
		stacks[p.Player] -= p.Amount
		wagered += p.Amount
		if diff := abs(stacks[p.Player] - p.StackAfter); diff > Epsilon {
			return &ValidationError{HandID: h.ID, Reason: fmt.Sprintf(
				"post by %s: replayed stack %d differs from recorded %d",
				p.Player, stacks[p.Player], p.StackAfter)}
		}
	}
	for i, a := range h.Actions {
		stacks[a.Player] -= a.Amount
		wagered += a.Amount
		if diff := abs(stacks[a.Player] - a.StackAfter); diff > Epsilon {
			return &ValidationError{HandID: h.ID, Reason: fmt.Sprintf(
				"action %d (%s %s): replayed stack %d differs from recorded %d",
				i, a.Player, a.Type, stacks[a.Player], a.StackAfter)}
		}
		if a.Amount < 0 {
			return &ValidationError{HandID: h.ID, Reason: fmt.Sprintf(
				"action %d has negative amount %d", i, a.Amount)}
		}
	}

	var returned int64
	for _, r := range h.Returns {
		returned += r.Amount
	}

	// Everything wagered, less uncalled bets, must equal the recorded pot.
	if diff := abs(wagered - returned - h.Pot); diff > Epsilon {
		return &ValidationError{HandID: h.ID, Reason: fmt.Sprintf(
			"wagered %d minus returned %d does not match pot %d (off by %d)",
			wagered, returned, h.Pot, diff)}
	}

	// The pot, less rake and jackpot, must equal what winners collected.
	var collected int64
	for _, r := range h.Results {
		collected += r.Collected
	}
	if diff := abs(h.Pot - h.Rake - h.Jackpot - collected); diff > Epsilon {
		return &ValidationError{HandID: h.ID, Reason: fmt.Sprintf(
			"pot %d less rake %d and jackpot %d does not match collected %d",
			h.Pot, h.Rake, h.Jackpot, collected)}
	}

	return nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
