package retrieval

import (
	"os"
	"strings"
)

// defaultFunctionWords is the curated phrase-completion list for levels 1 and
// 3, in priority order: copulas first, then common verbs, articles,
// conjunctions, prepositions, pronouns and frequent adverbs. The order is
// data, not code: "grace is" is searched before "grace was", and every
// "keyword is" match is delivered before the first "keyword was" match.
var defaultFunctionWords = []string{
	"is", "are", "was", "were", "be", "been", "being", "am",
	"has", "have", "had", "does", "do", "did",
	"will", "would", "shall", "should", "can", "could", "may", "might", "must",
	"means", "brings", "gives", "makes", "comes", "goes", "says", "said",
	"shows", "leads", "keeps", "holds", "works", "stands", "remains",
	"the", "a", "an",
	"and", "or", "but", "nor", "so", "yet", "for",
	"if", "then", "than", "because", "while", "when", "where",
	"which", "who", "whom", "whose", "that", "what", "how", "why",
	"of", "in", "on", "at", "to", "from", "with", "without",
	"within", "into", "unto", "upon", "over", "under", "above", "below",
	"between", "among", "through", "throughout", "before", "after", "during",
	"about", "against", "toward", "towards", "across", "behind", "beyond",
	"beside", "besides", "near", "around", "along", "amid", "amidst",
	"he", "she", "it", "they", "we", "you", "i",
	"him", "her", "them", "us", "me",
	"his", "hers", "its", "their", "our", "your", "my",
	"mine", "yours", "theirs", "ours",
	"himself", "herself", "itself", "themselves", "ourselves", "myself", "yourself",
	"not", "no", "all", "any", "some", "none",
	"each", "every", "both", "either", "neither", "few",
	"more", "most", "much", "many", "little", "less", "least",
	"own", "other", "another", "such", "same", "only",
	"very", "too", "also", "just", "even", "still", "quite",
	"again", "ever", "never", "always", "often", "sometimes", "seldom",
	"now", "then", "here", "there", "thus", "therefore", "hence",
	"indeed", "rather", "almost", "enough", "once", "twice",
	"soon", "already", "perhaps", "maybe", "together", "apart",
	"away", "back", "down", "up", "out", "off", "further", "forth",
	"first", "last", "next", "since", "until", "till", "whether",
	"shalt", "thee", "thou", "thy", "thine", "ye", "hath", "doth", "wilt",
	"as", "by", "like", "per", "via",
}

// DefaultFunctionWords returns a copy of the built-in function-word list.
func DefaultFunctionWords() []string {
	words := make([]string, len(defaultFunctionWords))
	copy(words, defaultFunctionWords)
	return words
}

// LoadFunctionWords reads a comma- or newline-separated word list, preserving
// file order. Order in the file is the search priority.
func LoadFunctionWords(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fields := strings.FieldsFunc(string(raw), func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	var words []string
	seen := make(map[string]bool)
	for _, f := range fields {
		w := strings.ToLower(strings.TrimSpace(f))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words, nil
}
