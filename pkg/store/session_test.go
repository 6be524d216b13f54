package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStateClone(t *testing.T) {
	now := time.Now()
	orig := NewSessionState("id", "question", []string{"a", "b"}, now)
	orig.UsedIDs["s1"] = true
	orig.Offsets[2] = 7

	clone := orig.Clone()

	require.Equal(t, orig, clone)

	clone.Keywords[0] = "mutated"
	clone.UsedIDs["s2"] = true
	clone.Offsets[2] = 99
	clone.CurrentLevel = 4

	assert.Equal(t, "a", orig.Keywords[0])
	assert.False(t, orig.UsedIDs["s2"])
	assert.Equal(t, 7, orig.Offsets[2])
	assert.Equal(t, 0, orig.CurrentLevel)
}

func TestNewSessionState(t *testing.T) {
	now := time.Now()
	st := NewSessionState("id", "q", nil, now)

	assert.Equal(t, 0, st.CurrentLevel)
	assert.Equal(t, now, st.CreatedAt)
	assert.Equal(t, now, st.LastAccess)
	for lvl := LevelKeywordCombos; lvl <= LevelPureSemantic; lvl++ {
		off, ok := st.Offsets[lvl]
		assert.True(t, ok, "level %d missing from offsets", lvl)
		assert.Equal(t, 0, off)
	}
}

func TestSourceForLevel(t *testing.T) {
	assert.Equal(t, "level_0", SourceForLevel(LevelKeywordCombos))
	assert.Equal(t, "level_4", SourceForLevel(LevelPureSemantic))
	assert.Equal(t, SourceSemanticSearch, SourceForLevel(LevelSemanticPortion))
}
