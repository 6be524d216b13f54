package retrieval

import (
	"context"

	"github.com/tigernone/corpusqa/pkg/store"
)

// Strategy is one retrieval level. Each level is a pure function of its
// search sequence, a movable offset into that sequence, and the running
// exclusion set; it knows nothing about the other levels.
type Strategy interface {
	Name() string

	// Available reports whether the level's preconditions hold. An
	// unavailable level is skipped outright, not marked exhausted.
	Available() bool

	// Next pulls up to limit sentences starting at offset, skipping
	// excluded identifiers. Exhausted means the level's result space is
	// consumed for this session.
	Next(ctx context.Context, offset, limit int, exclude map[string]bool) (StrategyResult, error)
}

// StrategyResult carries a level's contribution to one batch.
type StrategyResult struct {
	Hits      []store.Sentence
	NewOffset int
	Exhausted bool
}

// termSeqStrategy drives levels 0-3: a deterministic sequence of term
// queries, one cursor position per sequence entry. Levels differ only in how
// the sequence is generated and whether entries are exact phrases.
type termSeqStrategy struct {
	name   string
	index  Index
	phrase bool
	// seq materializes the query sequence. Lazy because synonym levels
	// must not call the synonym service unless the level is reached.
	seq func(ctx context.Context) [][]string
	// available guards preconditions without materializing the sequence.
	available bool
}

func (s *termSeqStrategy) Name() string    { return s.name }
func (s *termSeqStrategy) Available() bool { return s.available }

func (s *termSeqStrategy) Next(ctx context.Context, offset, limit int, exclude map[string]bool) (StrategyResult, error) {
	seq := s.seq(ctx)
	if offset >= len(seq) {
		return StrategyResult{NewOffset: offset, Exhausted: true}, nil
	}

	var hits []store.Sentence
	cursor := offset
	for len(hits) < limit && cursor < len(seq) {
		terms := seq[cursor]
		found, err := s.index.Search(ctx, Query{
			Terms:       terms,
			ExactPhrase: s.phrase,
			RequireAll:  true,
			Limit:       limit - len(hits),
		})
		if err != nil {
			return StrategyResult{NewOffset: cursor}, err
		}
		for _, h := range found {
			if exclude[h.ID] {
				continue
			}
			hits = append(hits, h)
			if len(hits) >= limit {
				break
			}
		}
		cursor++
	}

	return StrategyResult{
		Hits:      hits,
		NewOffset: cursor,
		Exhausted: cursor >= len(seq),
	}, nil
}

// semanticStrategy is level 4: similarity ranking of the whole corpus against
// the question vector. Its offset walks the stable corpus ranking, so it is
// only exhausted when the corpus itself runs out.
type semanticStrategy struct {
	index Index
	vec   func(ctx context.Context) ([]float32, error)
}

func (s *semanticStrategy) Name() string    { return "level_4" }
func (s *semanticStrategy) Available() bool { return true }

func (s *semanticStrategy) Next(ctx context.Context, offset, limit int, exclude map[string]bool) (StrategyResult, error) {
	v, err := s.vec(ctx)
	if err != nil {
		return StrategyResult{NewOffset: offset}, err
	}
	// Exclusion is left to the offset and the deduplicator: passing the
	// exclude set to the index here would shift the ranking under the
	// cursor between calls.
	found, err := s.index.VectorRank(ctx, v, nil, offset, limit)
	if err != nil {
		return StrategyResult{NewOffset: offset}, err
	}
	hits := make([]store.Sentence, 0, len(found))
	for _, h := range found {
		if exclude[h.ID] {
			continue
		}
		hits = append(hits, h)
	}
	return StrategyResult{
		Hits:      hits,
		NewOffset: offset + len(found),
		Exhausted: len(found) < limit,
	}, nil
}
