// Package keywords derives the search terms a question is answered with.
// Extraction prefers the LLM and falls back to a simple tokenizer, so a dead
// model endpoint degrades quality rather than availability.
package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/tigernone/corpusqa/pkg/llm"
)

const extractPrompt = `Extract the most important search keywords from the question below.
Return ONLY a JSON array of lowercase keywords, most important first, at most %d entries.
Exclude question words, articles, prepositions and other filler.

Question: %s`

const maxKeywords = 8

// Extractor pulls content-bearing keywords out of a question.
type Extractor struct {
	llm       llm.Provider
	stopwords map[string]bool
	log       *zap.Logger
}

// NewExtractor creates an extractor. The provider may be nil, in which case
// only the tokenizer fallback runs. Stopwords are the words the fallback
// drops; the function-word list of the retrieval config is the natural
// choice.
func NewExtractor(provider llm.Provider, stopwords []string, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	set := make(map[string]bool, len(stopwords))
	for _, w := range stopwords {
		set[strings.ToLower(w)] = true
	}
	return &Extractor{llm: provider, stopwords: set, log: log}
}

// Extract returns the question's keywords, most important first. It never
// fails: when the LLM is unavailable or returns garbage the tokenizer
// fallback answers instead.
func (e *Extractor) Extract(ctx context.Context, question string) []string {
	if e.llm != nil {
		raw, err := e.llm.Generate(ctx, fmt.Sprintf(extractPrompt, maxKeywords, question),
			llm.WithTemperature(0))
		if err == nil {
			if kws, perr := ParseJSONList(raw); perr == nil && len(kws) > 0 {
				return normalize(kws, maxKeywords)
			}
		} else {
			e.log.Warn("keyword extraction via llm failed, using tokenizer",
				zap.Error(err))
		}
	}
	return e.Tokenize(question)
}

// Tokenize lowercases, strips punctuation, and drops stopwords, keeping the
// original word order.
func (e *Extractor) Tokenize(question string) []string {
	words := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	var out []string
	seen := make(map[string]bool)
	for _, w := range words {
		if len(w) < 2 || e.stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

// ParseJSONList extracts a JSON string array from an LLM response, tolerating
// surrounding prose and code fences.
func ParseJSONList(raw string) ([]string, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}
	var list []string
	if err := json.Unmarshal([]byte(raw[start:end+1]), &list); err != nil {
		return nil, fmt.Errorf("parsing keyword array: %w", err)
	}
	return list, nil
}

func normalize(words []string, limit int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out
}
