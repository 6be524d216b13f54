package retrieval

import (
	"strings"
	"unicode"

	"github.com/xrash/smetrics"
)

// SimilarityPolicy decides whether two sentence texts are near-duplicates.
// It is a swappable policy so the deduplicator can be tested against a
// deterministic metric.
type SimilarityPolicy interface {
	Similar(a, b string) bool
}

// DefaultSimilarityThreshold is the near-duplicate cutoff. High enough that
// only inflectional variants ("waked" vs "wakened") and punctuation/case
// differences collapse, not merely related sentences.
const DefaultSimilarityThreshold = 0.95

// EditRatioPolicy flags near-duplicates using a matched-character ratio over
// normalized text: with insertions and deletions costing one and
// substitutions two, 1 - distance/(len(a)+len(b)) is the share of characters
// the two texts have in common. An inflectional variant changes a handful of
// characters in a full sentence, so it stays above the cutoff wherever in
// the sentence it occurs.
type EditRatioPolicy struct {
	Threshold float64
}

func NewEditRatioPolicy(threshold float64) EditRatioPolicy {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return EditRatioPolicy{Threshold: threshold}
}

func (p EditRatioPolicy) Similar(a, b string) bool {
	na, nb := NormalizeText(a), NormalizeText(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	dist := smetrics.WagnerFischer(na, nb, 1, 1, 2)
	ratio := 1 - float64(dist)/float64(len(na)+len(nb))
	return ratio >= p.Threshold
}

// NormalizeText lowercases, strips punctuation and collapses whitespace so
// comparison ignores cosmetic differences.
func NormalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	lastSpace := true
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Fingerprint returns the first n normalized words, used as a fast pre-check
// before the full similarity ratio.
func Fingerprint(text string, n int) string {
	words := strings.Fields(NormalizeText(text))
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
