package matcher

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// codeSimilarity scores two normalized invoice codes for tier 2. When one
// code is a substring of the other they are the same number with different
// decoration and score 1.0 outright; otherwise the normalized edit
// similarity decides.
func codeSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 1.0
	}
	return editSimilarity(a, b)
}

// editSimilarity returns 1 - distance/maxlen in [0,1].
func editSimilarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}
