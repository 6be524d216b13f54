package keywords

import (
	"context"
	"fmt"

	"github.com/tigernone/corpusqa/pkg/llm"
)

const synonymPrompt = `List up to %d single-word synonyms for the word %q as they might appear in an older literary text.
Return ONLY a JSON array of lowercase words. Return [] if there are no good synonyms.`

const maxSynonyms = 5

// LLMSynonyms asks the LLM for synonyms of a keyword. It satisfies the
// retrieval engine's synonym provider contract.
type LLMSynonyms struct {
	llm llm.Provider
}

func NewLLMSynonyms(provider llm.Provider) *LLMSynonyms {
	return &LLMSynonyms{llm: provider}
}

func (s *LLMSynonyms) Synonyms(ctx context.Context, term string) ([]string, error) {
	raw, err := s.llm.Generate(ctx, fmt.Sprintf(synonymPrompt, maxSynonyms, term),
		llm.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("synonyms for %q: %w", term, err)
	}
	list, err := ParseJSONList(raw)
	if err != nil {
		return nil, fmt.Errorf("synonyms for %q: %w", term, err)
	}
	out := normalize(list, maxSynonyms)
	// The term itself is not its own synonym.
	filtered := out[:0]
	for _, w := range out {
		if w != term {
			filtered = append(filtered, w)
		}
	}
	return filtered, nil
}
