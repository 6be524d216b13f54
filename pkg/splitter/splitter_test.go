package splitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLineMode(t *testing.T) {
	text := "In the beginning God created the heaven and the earth.\n\nAnd the earth was without form, and void.\n  \nAnd God said, Let there be light:\n"
	got := Split(text, ModeLine)

	require.Len(t, got, 3)
	assert.Equal(t, "In the beginning God created the heaven and the earth.", got[0])
	assert.Equal(t, "And God said, Let there be light:", got[2])
}

func TestSplitSentenceMode(t *testing.T) {
	t.Run("basic terminators", func(t *testing.T) {
		got := Split("First sentence. Second one! Third one? Fourth", ModeSentence)
		require.Len(t, got, 4)
		assert.Equal(t, "First sentence.", got[0])
		assert.Equal(t, "Second one!", got[1])
		assert.Equal(t, "Third one?", got[2])
		assert.Equal(t, "Fourth", got[3])
	})

	t.Run("terminator runs stay attached", func(t *testing.T) {
		got := Split("Really?! Yes... maybe.", ModeSentence)
		require.Len(t, got, 2)
		assert.Equal(t, "Really?!", got[0])
		assert.Equal(t, "Yes... maybe.", got[1])
	})

	t.Run("newlines inside prose do not split", func(t *testing.T) {
		got := Split("A sentence broken\nacross lines. Another.", ModeSentence)
		require.Len(t, got, 2)
		assert.Equal(t, "A sentence broken across lines.", got[0])
	})
}

func TestSplitAuto(t *testing.T) {
	t.Run("verse-per-line corpus uses lines", func(t *testing.T) {
		lines := []string{
			"Blessed are the poor in spirit: for theirs is the kingdom of heaven.",
			"Blessed are they that mourn: for they shall be comforted.",
			"Blessed are the meek: for they shall inherit the earth.",
			"Blessed are the merciful: for they shall obtain mercy.",
			"Blessed are the pure in heart: for they shall see God.",
			"Blessed are the peacemakers: for they shall be called the children of God.",
		}
		got := Split(strings.Join(lines, "\n"), ModeAuto)
		assert.Equal(t, lines, got)
	})

	t.Run("flowing prose uses sentences", func(t *testing.T) {
		text := "It was the best of times. It was the worst of times. It was the age of wisdom. It was the age of foolishness."
		got := Split(text, ModeAuto)
		assert.Len(t, got, 4)
	})

	t.Run("multi-byte line endings classify by rune", func(t *testing.T) {
		lines := []string{
			"Herren är min herde, mig skall intet fattas.",
			"Han låter mig vila på gröna ängar.",
			"Han för mig till vatten där jag finner ro.",
			"Han vederkvicker min själ.",
			"Han leder mig på rätta vägar för sitt namns skull.",
			"Jag vandrar trygg, ty du är med mig ändå",
		}
		got := Split(strings.Join(lines, "\n"), ModeAuto)
		assert.Equal(t, lines, got, "5 of 6 lines end in a terminator, verse shape")
	})
}
