package pipeline

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// sourceAlphabet is the URL-safe base64 alphabet a permuted alphabet
// substitutes, position for position.
const sourceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// Alphabet is a bijective character substitution layered on top of URL-safe
// base64 output; each provider ships its own 64-symbol permutation.
type Alphabet struct {
	forward map[rune]rune
	inverse map[rune]rune
}

// NewAlphabet builds a substitution table from a provider's 64-character
// permuted alphabet.
func NewAlphabet(permuted string) (*Alphabet, error) {
	if len(permuted) != 64 {
		return nil, fmt.Errorf("permuted alphabet must be 64 characters, got %d", len(permuted))
	}

	a := &Alphabet{
		forward: make(map[rune]rune, 64),
		inverse: make(map[rune]rune, 64),
	}
	for i, r := range permuted {
		src := rune(sourceAlphabet[i])
		if _, dup := a.inverse[r]; dup {
			return nil, fmt.Errorf("permuted alphabet repeats %q", r)
		}
		a.forward[src] = r
		a.inverse[r] = src
	}
	return a, nil
}

// Substitute maps URL-safe base64 text into the permuted alphabet.
func (a *Alphabet) Substitute(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if out, ok := a.forward[r]; ok {
			b.WriteRune(out)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Unsubstitute maps permuted text back to URL-safe base64.
func (a *Alphabet) Unsubstitute(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if out, ok := a.inverse[r]; ok {
			b.WriteRune(out)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EncodeURLSafe base64-encodes data with +/ replaced by -_ and padding
// stripped, the form every observed provider splices into URL paths.
func EncodeURLSafe(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeURLSafe decodes unpadded URL-safe base64.
func DecodeURLSafe(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
