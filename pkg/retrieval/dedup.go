package retrieval

import "github.com/tigernone/corpusqa/pkg/store"

const fingerprintWords = 5

// Deduplicator filters candidate lists against an exclusion set of
// identifiers and against each other. It is a pure filter: the caller owns
// the exclusion set and updates it with the identifiers of accepted items.
type Deduplicator struct {
	policy SimilarityPolicy
}

func NewDeduplicator(policy SimilarityPolicy) *Deduplicator {
	if policy == nil {
		policy = NewEditRatioPolicy(DefaultSimilarityThreshold)
	}
	return &Deduplicator{policy: policy}
}

// Filter returns the sublist of candidates that are neither excluded by
// identifier nor near-duplicates (by normalized text) of an earlier accepted
// candidate in the same pass. The first occurrence wins. Running Filter on
// its own output with the same exclusion set is a no-op.
func (d *Deduplicator) Filter(candidates []store.Sentence, exclude map[string]bool) []store.Sentence {
	if len(candidates) == 0 {
		return nil
	}
	accepted := make([]store.Sentence, 0, len(candidates))
	seenIDs := make(map[string]bool, len(candidates))
	seenPrints := make(map[string]bool, len(candidates))

	for _, cand := range candidates {
		if cand.Text == "" {
			continue
		}
		if exclude[cand.ID] || seenIDs[cand.ID] {
			continue
		}
		if d.isNearDuplicate(cand.Text, accepted, seenPrints) {
			continue
		}
		seenIDs[cand.ID] = true
		seenPrints[Fingerprint(cand.Text, fingerprintWords)] = true
		accepted = append(accepted, cand)
	}
	return accepted
}

func (d *Deduplicator) isNearDuplicate(text string, accepted []store.Sentence, seenPrints map[string]bool) bool {
	// Fingerprint catches duplicates that differ only past the first words.
	if fp := Fingerprint(text, fingerprintWords); fp != "" && seenPrints[fp] {
		return true
	}
	for _, a := range accepted {
		if d.policy.Similar(text, a.Text) {
			return true
		}
	}
	return false
}
