package keywords

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigernone/corpusqa/pkg/llm"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Generate(context.Context, string, ...llm.Option) (string, error) {
	return f.response, f.err
}

var stop = []string{"what", "does", "the", "is", "a", "of", "say", "about"}

func TestExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("uses llm keywords when parseable", func(t *testing.T) {
		e := NewExtractor(&fakeLLM{response: `["grace", "salvation"]`}, stop, nil)
		got := e.Extract(ctx, "What does the text say about grace and salvation?")
		assert.Equal(t, []string{"grace", "salvation"}, got)
	})

	t.Run("tolerates prose around the array", func(t *testing.T) {
		e := NewExtractor(&fakeLLM{response: "Here you go:\n```json\n[\"light\", \"darkness\"]\n```"}, stop, nil)
		got := e.Extract(ctx, "light and darkness")
		assert.Equal(t, []string{"light", "darkness"}, got)
	})

	t.Run("falls back to tokenizer on llm error", func(t *testing.T) {
		e := NewExtractor(&fakeLLM{err: errors.New("offline")}, stop, nil)
		got := e.Extract(ctx, "What does the text say about grace?")
		assert.Equal(t, []string{"text", "grace"}, got)
	})

	t.Run("falls back on unparseable output", func(t *testing.T) {
		e := NewExtractor(&fakeLLM{response: "I cannot help with that."}, stop, nil)
		got := e.Extract(ctx, "What is grace?")
		assert.Equal(t, []string{"grace"}, got)
	})

	t.Run("no llm at all", func(t *testing.T) {
		e := NewExtractor(nil, stop, nil)
		got := e.Extract(ctx, "What of light?")
		assert.Equal(t, []string{"light"}, got)
	})
}

func TestTokenize(t *testing.T) {
	e := NewExtractor(nil, stop, nil)

	t.Run("drops stopwords and punctuation, keeps order", func(t *testing.T) {
		got := e.Tokenize("What does the kingdom of heaven say?")
		assert.Equal(t, []string{"kingdom", "heaven"}, got)
	})

	t.Run("deduplicates", func(t *testing.T) {
		got := e.Tokenize("light upon light")
		assert.Equal(t, []string{"light", "upon"}, got)
	})

	t.Run("single-letter tokens dropped", func(t *testing.T) {
		got := e.Tokenize("a b kingdom")
		assert.Equal(t, []string{"kingdom"}, got)
	})
}

func TestParseJSONList(t *testing.T) {
	t.Run("plain array", func(t *testing.T) {
		got, err := ParseJSONList(`["a","b"]`)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got)
	})

	t.Run("no array", func(t *testing.T) {
		_, err := ParseJSONList("nothing here")
		assert.Error(t, err)
	})

	t.Run("malformed array", func(t *testing.T) {
		_, err := ParseJSONList(`[1, 2]`)
		assert.Error(t, err)
	})
}

func TestLLMSynonyms(t *testing.T) {
	ctx := context.Background()

	t.Run("parses and excludes the term itself", func(t *testing.T) {
		s := NewLLMSynonyms(&fakeLLM{response: `["mercy", "grace", "favor"]`})
		got, err := s.Synonyms(ctx, "grace")
		require.NoError(t, err)
		assert.Equal(t, []string{"mercy", "favor"}, got)
	})

	t.Run("provider error surfaces", func(t *testing.T) {
		s := NewLLMSynonyms(&fakeLLM{err: errors.New("offline")})
		_, err := s.Synonyms(ctx, "grace")
		assert.Error(t, err)
	})

	t.Run("empty array is valid", func(t *testing.T) {
		s := NewLLMSynonyms(&fakeLLM{response: `[]`})
		got, err := s.Synonyms(ctx, "xylophone")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
