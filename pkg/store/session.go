package store

import "time"

// Sentence is a single retrieved corpus sentence as delivered to the caller.
type Sentence struct {
	ID            string  `json:"id"`
	Text          string  `json:"text"`
	SentenceIndex int     `json:"sentence_index"`
	Score         float32 `json:"score"`
	Level         int     `json:"level"`  // 0-4 for keyword levels, 5 for pure-semantic
	Source        string  `json:"source"` // level_0 .. level_4, semantic_search
}

const (
	LevelKeywordCombos = 0
	LevelKeywordPhrase = 1
	LevelSynonymCombos = 2
	LevelSynonymPhrase = 3
	LevelPureSemantic  = 4

	// LevelSemanticPortion marks sentences from the mandatory
	// semantic-fallback portion of a batch.
	LevelSemanticPortion = 5

	SourceSemanticSearch = "semantic_search"
)

// SourceForLevel returns the source tag for a keyword-phase level.
func SourceForLevel(level int) string {
	switch level {
	case LevelKeywordCombos:
		return "level_0"
	case LevelKeywordPhrase:
		return "level_1"
	case LevelSynonymCombos:
		return "level_2"
	case LevelSynonymPhrase:
		return "level_3"
	case LevelPureSemantic:
		return "level_4"
	default:
		return SourceSemanticSearch
	}
}

// LevelOffsets tracks the pagination cursor into each level's result space.
// Cursors are monotonically non-decreasing for the lifetime of a session.
type LevelOffsets map[int]int

func NewLevelOffsets() LevelOffsets {
	return LevelOffsets{0: 0, 1: 0, 2: 0, 3: 0, 4: 0}
}

func (o LevelOffsets) Clone() LevelOffsets {
	c := make(LevelOffsets, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

// SessionState is the per-conversation record the retrieval engine carries
// across "tell me more" calls. It is owned exclusively by the orchestration
// layer; nothing else mutates it.
type SessionState struct {
	ID           string          `json:"id"`
	Question     string          `json:"question"`
	Keywords     []string        `json:"keywords"`
	CurrentLevel int             `json:"current_level"`
	Offsets      LevelOffsets    `json:"level_offsets"`
	UsedIDs      map[string]bool `json:"used_sentence_ids"`
	CreatedAt    time.Time       `json:"created_at"`
	LastAccess   time.Time       `json:"last_access"`
	BatchCount   int             `json:"batch_count"`
}

// NewSessionState returns a fresh session at level 0 with zero offsets.
func NewSessionState(id, question string, keywords []string, now time.Time) *SessionState {
	return &SessionState{
		ID:           id,
		Question:     question,
		Keywords:     keywords,
		CurrentLevel: 0,
		Offsets:      NewLevelOffsets(),
		UsedIDs:      make(map[string]bool),
		CreatedAt:    now,
		LastAccess:   now,
	}
}

// Clone returns a deep copy. The orchestrator works on a copy so a failed
// batch never leaves partial mutations behind.
func (s *SessionState) Clone() *SessionState {
	used := make(map[string]bool, len(s.UsedIDs))
	for k, v := range s.UsedIDs {
		used[k] = v
	}
	kw := make([]string, len(s.Keywords))
	copy(kw, s.Keywords)
	return &SessionState{
		ID:           s.ID,
		Question:     s.Question,
		Keywords:     kw,
		CurrentLevel: s.CurrentLevel,
		Offsets:      s.Offsets.Clone(),
		UsedIDs:      used,
		CreatedAt:    s.CreatedAt,
		LastAccess:   s.LastAccess,
		BatchCount:   s.BatchCount,
	}
}
