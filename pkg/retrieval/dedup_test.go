package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigernone/corpusqa/pkg/store"
)

func sentences(texts ...string) []store.Sentence {
	out := make([]store.Sentence, len(texts))
	for i, text := range texts {
		out[i] = store.Sentence{ID: string(rune('a' + i)), Text: text}
	}
	return out
}

func TestDeduplicatorFilter(t *testing.T) {
	d := NewDeduplicator(nil)

	t.Run("keeps first of near duplicates", func(t *testing.T) {
		in := sentences(
			"In the beginning God created the heaven and the earth.",
			"In the beginning God created the heaven and the earth",
			"And the earth was without form, and void.",
		)
		out := d.Filter(in, nil)
		require.Len(t, out, 2)
		assert.Equal(t, in[0].ID, out[0].ID)
		assert.Equal(t, in[2].ID, out[1].ID)
	})

	t.Run("keeps clearly different sentences", func(t *testing.T) {
		in := sentences(
			"And God said, Let there be light: and there was light.",
			"And God called the light Day, and the darkness he called Night.",
		)
		out := d.Filter(in, nil)
		assert.Len(t, out, 2)
	})

	t.Run("punctuation and case do not defeat detection", func(t *testing.T) {
		in := sentences(
			"Blessed are the meek, for they shall inherit the earth.",
			"blessed are the meek for they shall inherit the earth",
		)
		out := d.Filter(in, nil)
		assert.Len(t, out, 1)
	})

	t.Run("inflectional variants collapse", func(t *testing.T) {
		in := sentences(
			"And they waked him in the middle of the storm.",
			"And they wakened him in the middle of the storm.",
		)
		out := d.Filter(in, nil)
		require.Len(t, out, 1)
		assert.Equal(t, in[0].ID, out[0].ID)
	})

	t.Run("excluded ids are dropped", func(t *testing.T) {
		in := sentences(
			"For where your treasure is, there will your heart be also.",
			"Consider the lilies of the field, how they grow.",
		)
		out := d.Filter(in, map[string]bool{in[0].ID: true})
		require.Len(t, out, 1)
		assert.Equal(t, in[1].ID, out[0].ID)
	})

	t.Run("duplicate ids within one batch collapse", func(t *testing.T) {
		s := store.Sentence{ID: "x", Text: "Judge not, that ye be not judged."}
		out := d.Filter([]store.Sentence{s, s}, nil)
		assert.Len(t, out, 1)
	})

	t.Run("idempotent", func(t *testing.T) {
		in := sentences(
			"Ask, and it shall be given you; seek, and ye shall find.",
			"Ask and it shall be given you, seek and ye shall find.",
			"Knock, and it shall be opened unto you.",
		)
		once := d.Filter(in, nil)
		twice := d.Filter(once, nil)
		assert.Equal(t, once, twice)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, d.Filter(nil, nil))
	})
}

func TestEditRatioPolicy(t *testing.T) {
	p := NewEditRatioPolicy(0)

	t.Run("identical after normalization", func(t *testing.T) {
		assert.True(t, p.Similar("Hello, World!", "hello world"))
	})

	t.Run("inflectional variant stays above the cutoff", func(t *testing.T) {
		assert.True(t, p.Similar(
			"And they waked him in the middle of the storm.",
			"And they wakened him in the middle of the storm.",
		))
	})

	t.Run("different sentences", func(t *testing.T) {
		assert.False(t, p.Similar(
			"And the evening and the morning were the first day.",
			"Thou shalt not steal.",
		))
	})

	t.Run("related but distinct sentences survive", func(t *testing.T) {
		assert.False(t, p.Similar(
			"God is light and in him is no darkness at all.",
			"The light shines in the darkness and the darkness comprehended it not.",
		))
	})
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "let there be light", NormalizeText("  Let there be LIGHT!  "))
	assert.Equal(t, "a b c", NormalizeText("a,   b... c"))
}
