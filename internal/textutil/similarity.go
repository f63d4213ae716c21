package textutil

import (
	"math"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Score returns the similarity of a and b as an integer percentage in
// [0, 100]. Both inputs are whitespace normalized and compared without regard
// to case; the score is the Levenshtein distance normalized by the longer
// string. Two empty strings score 100, one empty string scores 0.
func Score(a, b string) int {
	return ScoreFolded(NormalizeForHash(a), NormalizeForHash(b))
}

// ScoreFolded is Score for inputs already passed through NormalizeForHash.
func ScoreFolded(a, b string) int {
	if a == b {
		return 100
	}

	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}

	return percent(edlib.LevenshteinDistance(a, b), max(la, lb))
}

// MaxPossibleScore is the best score two strings of the given rune lengths
// can reach, since their edit distance is at least the length difference.
func MaxPossibleScore(la, lb int) int {
	longest := max(la, lb)
	if longest == 0 {
		return 100
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	return percent(diff, longest)
}

// LengthBounds returns the inclusive range of candidate lengths that can
// still score at least minPercent against a query of queryLen runes. ok is
// false when every length qualifies.
func LengthBounds(queryLen, minPercent int) (lo, hi int, ok bool) {
	// round(x) >= m exactly when x >= m - 0.5.
	threshold := (float64(minPercent) - 0.5) / 100
	if threshold <= 0 {
		return 0, 0, false
	}

	q := float64(queryLen)
	lo = int(math.Floor(q * threshold))
	hi = int(math.Ceil(q / threshold))
	return lo, hi, true
}

func percent(distance, longest int) int {
	p := int(math.Round(100 * (1 - float64(distance)/float64(longest))))
	return min(max(p, 0), 100)
}
