package textutil

import (
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// cases.Caser keeps internal state, so every goroutine takes its own chain.
var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(norm.NFC, cases.Fold(), norm.NFC)
	},
}

// Normalize collapses every run of whitespace into a single space and trims
// both ends. Casing is preserved.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeForHash returns the whitespace-normalized text composed to NFC and
// case folded without regard to locale.
func NormalizeForHash(text string) string {
	normalized := Normalize(text)
	if normalized == "" {
		return ""
	}

	t := foldPool.Get().(transform.Transformer)
	defer foldPool.Put(t)

	folded, _, err := transform.String(t, normalized)
	if err != nil {
		// Keep the whitespace-normalized form when folding fails.
		return normalized
	}
	return folded
}

// Length reports the rune length of the hash form of text. Stored entries
// persist this value so candidates can be pruned by length before scoring.
func Length(text string) int {
	return utf8.RuneCountInString(NormalizeForHash(text))
}
