package search

import "unicode"

// Scorer calculates a match score from the matched rune positions. The term
// runes arrive in their original case so word starts inside camelCase names
// count as boundaries; comparisons against the lowercased query fold case.
// Higher is better.
type Scorer interface {
	Score(queryRunes, termRunes []rune, matches []int) int
}

// WeightedScorer scores subsequence matches with configurable weights.
type WeightedScorer struct {
	// BaseScore is the starting score for any match.
	BaseScore int

	// ConsecutiveBonus is added for each unbroken pair of matched runes.
	ConsecutiveBonus int

	// WordBoundaryBonus is added for matches at word boundaries.
	WordBoundaryBonus int

	// PrefixBonus is added when the first match is at position 0.
	PrefixBonus int

	// ExactPrefixBonus is added when the query is a literal prefix of the
	// term.
	ExactPrefixBonus int

	// GapPenalty is subtracted per unmatched rune between matches.
	GapPenalty int

	// LeadingPenalty is subtracted per rune before the first match.
	LeadingPenalty int

	// LengthBonusThreshold awards shorter terms: terms under the threshold
	// gain the difference, so a tighter term outranks a longer one of equal
	// match quality.
	LengthBonusThreshold int
}

// DefaultScorer returns the standard launcher weights.
func DefaultScorer() WeightedScorer {
	return WeightedScorer{
		BaseScore:            100,
		ConsecutiveBonus:     20,
		WordBoundaryBonus:    15,
		PrefixBonus:          25,
		ExactPrefixBonus:     50,
		GapPenalty:           2,
		LeadingPenalty:       1,
		LengthBonusThreshold: 32,
	}
}

// Score implements the Scorer interface.
func (s WeightedScorer) Score(queryRunes, termRunes []rune, matches []int) int {
	if len(matches) == 0 {
		return 0
	}

	score := s.BaseScore

	for i := 1; i < len(matches); i++ {
		if matches[i] == matches[i-1]+1 {
			score += s.ConsecutiveBonus
		}
	}

	for _, idx := range matches {
		if isWordBoundary(termRunes, idx) {
			score += s.WordBoundaryBonus
		}
	}

	if matches[0] == 0 {
		score += s.PrefixBonus
	}

	if len(matches) > 1 {
		gap := matches[len(matches)-1] - matches[0] - len(matches) + 1
		if gap > 0 {
			score -= gap * s.GapPenalty
		}
	}

	if matches[0] > 0 {
		score -= matches[0] * s.LeadingPenalty
	}

	if len(termRunes) < s.LengthBonusThreshold {
		score += s.LengthBonusThreshold - len(termRunes)
	}

	if len(termRunes) >= len(queryRunes) {
		isPrefix := true
		for i, qr := range queryRunes {
			if unicode.ToLower(termRunes[i]) != qr {
				isPrefix = false
				break
			}
		}
		if isPrefix {
			score += s.ExactPrefixBonus
		}
	}

	if score < 1 {
		score = 1
	}
	return score
}

// isWordBoundary reports whether the rune at idx starts a word: position 0,
// preceded by a space or punctuation rune, or an upper-case rune after a
// lower-case one as in camelCase names.
func isWordBoundary(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx >= len(runes) {
		return false
	}
	prev := runes[idx-1]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(runes[idx])
}
