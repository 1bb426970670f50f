package phh

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// Encode writes the hand history to the writer as a PHH TOML document.
func Encode(w io.Writer, h *HandHistory) error {
	if h == nil {
		return fmt.Errorf("phh: hand history is nil")
	}

	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(h)
}

// EncodeToBytes encodes and returns the result as bytes.
func EncodeToBytes(h *HandHistory) ([]byte, error) {
	var buf strings.Builder
	if err := Encode(&buf, h); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}
