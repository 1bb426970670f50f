// Package detect classifies raw hand history text by its source platform.
package detect

import (
	"fmt"
	"strings"

	"handtracker/internal/hand"
)

// UnsupportedPlatformError reports text that matched no known grammar.
// It is fatal for the file it came from but never for the whole batch.
type UnsupportedPlatformError struct {
	Snippet string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("detect: unrecognized hand history format (starts with %q)", e.Snippet)
}

// Header anchors. Every hand block a client exports begins with one of
// these on its first line; nothing else is trusted for classification.
var anchors = []struct {
	prefix   string
	platform hand.Platform
}{
	{"PokerStars Hand #", hand.PlatformPokerStars},
	{"PokerStars Game #", hand.PlatformPokerStars},
	{"PokerStars Zoom Hand #", hand.PlatformPokerStars},
	{"Poker Hand #", hand.PlatformGGPoker},
}

// Detect classifies a raw text blob. The decision is a strict prefix match
// against the first non-empty line: substrings elsewhere in the body never
// reclassify a file, since downstream parsers assume their own grammar
// unconditionally.
func Detect(raw string) (hand.Platform, error) {
	first := firstLine(raw)
	for _, a := range anchors {
		if strings.HasPrefix(first, a.prefix) {
			return a.platform, nil
		}
	}
	return "", &UnsupportedPlatformError{Snippet: snippet(first)}
}

func firstLine(raw string) string {
	raw = strings.TrimPrefix(raw, "\uFEFF")
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

func snippet(line string) string {
	const max = 40
	if len(line) > max {
		return line[:max]
	}
	return line
}
