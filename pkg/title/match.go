package title

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// Score returns the Jaro-Winkler similarity between two titles after
// normalization. Jaro-Winkler favors prefix agreement, which suits media
// titles where sequels diverge at the tail.
func Score(a, b string) float64 {
	return float64(edlib.JaroWinklerSimilarity(CleanTitle(a), CleanTitle(b)))
}

// ExactMatch reports whether two titles are equal ignoring case.
func ExactMatch(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
