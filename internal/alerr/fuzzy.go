package alerr

import (
	"fmt"
	"strings"
)

// maxSuggestDistance bounds how far a suggestion may be from the input.
const maxSuggestDistance = 3

// editDistance is the Levenshtein distance between a and b, over runes.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}

	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}
	for i, ca := range ra {
		diag := row[0]
		row[0] = i + 1
		for j, cb := range rb {
			above := row[j+1]
			cost := 1
			if ca == cb {
				cost = 0
			}
			row[j+1] = min(above+1, row[j]+1, diag+cost)
			diag = above
		}
	}
	return row[len(rb)]
}

// FindClosestMatch returns the option nearest to input, ignoring case, if it
// is within maxSuggestDistance edits. Ties go to the earlier option.
func FindClosestMatch(input string, options []string) (string, bool) {
	needle := strings.ToLower(input)
	best, bestDist := "", maxSuggestDistance+1
	for _, opt := range options {
		if d := editDistance(needle, strings.ToLower(opt)); d < bestDist {
			best, bestDist = opt, d
		}
	}
	return best, bestDist <= maxSuggestDistance
}

// SuggestSimilar returns "did you mean 'X'?" for a close option, or "".
func SuggestSimilar(input string, options []string) string {
	match, ok := FindClosestMatch(input, options)
	if !ok {
		return ""
	}
	return fmt.Sprintf("did you mean '%s'?", match)
}
