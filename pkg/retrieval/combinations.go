package retrieval

// KeywordCombinations generates the level-0 search sequence: every
// combination of the keyword set from most specific (all keywords together)
// down to each keyword alone. Within a size, combinations follow the original
// keyword order, so the sequence is fully deterministic.
//
//	["grace","freedom","salvation"] ->
//	  [grace freedom salvation] [grace freedom] [grace salvation]
//	  [freedom salvation] [grace] [freedom] [salvation]
func KeywordCombinations(keywords []string) [][]string {
	n := len(keywords)
	if n == 0 {
		return nil
	}
	var result [][]string
	for size := n; size >= 1; size-- {
		result = append(result, combosOfSize(keywords, size)...)
	}
	return result
}

func combosOfSize(keywords []string, size int) [][]string {
	var out [][]string
	combo := make([]int, size)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == size {
			terms := make([]string, size)
			for i, idx := range combo {
				terms[i] = keywords[idx]
			}
			out = append(out, terms)
			return
		}
		for i := start; i <= len(keywords)-(size-depth); i++ {
			combo[depth] = i
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return out
}

// phrasePair is one "<term> <function word>" entry in a level 1/3 sequence.
type phrasePair struct {
	term string
	fn   string
}

// phrasePairs builds the term x function-word cross product in term-major
// order: every function word for the first term before the second term is
// touched.
func phrasePairs(terms, functionWords []string) []phrasePair {
	pairs := make([]phrasePair, 0, len(terms)*len(functionWords))
	for _, t := range terms {
		for _, f := range functionWords {
			pairs = append(pairs, phrasePair{term: t, fn: f})
		}
	}
	return pairs
}

// SynonymVariants generates the level-2 search sequence: the keyword set with
// each keyword substituted by one of its synonyms in turn. A keyword without
// synonyms contributes no variants. Order follows keyword order, then each
// keyword's synonym order.
//
//	["grace","freedom"], {"grace":["mercy"], "freedom":["liberty"]} ->
//	  [mercy freedom] [grace liberty]
func SynonymVariants(keywords []string, synonyms map[string][]string) [][]string {
	var variants [][]string
	for i, kw := range keywords {
		for _, syn := range synonyms[kw] {
			v := make([]string, len(keywords))
			copy(v, keywords)
			v[i] = syn
			variants = append(variants, v)
		}
	}
	return variants
}
