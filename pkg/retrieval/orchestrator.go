package retrieval

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tigernone/corpusqa/pkg/store"
)

// Config encapsulates retrieval policy. The semantic/keyword split and the
// function-word list are policy data, not constants; the defaults mirror the
// documented behavior.
type Config struct {
	BatchSize           int
	SemanticCount       int
	QueryTimeout        time.Duration
	FunctionWords       []string
	SimilarityThreshold float64
}

// DefaultConfig returns the documented retrieval defaults: 15-sentence
// batches with 5 reserved for pure-semantic search.
func DefaultConfig() Config {
	return Config{
		BatchSize:           15,
		SemanticCount:       5,
		QueryTimeout:        5 * time.Second,
		FunctionWords:       DefaultFunctionWords(),
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
}

// Engine walks the five retrieval levels for a session and assembles ranked,
// deduplicated batches. It is the only component with cross-level knowledge.
type Engine struct {
	index    Index
	embedder Embedder
	synonyms SynonymProvider
	dedup    *Deduplicator
	cfg      Config
	log      *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger. Default is zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithSimilarityPolicy swaps the near-duplicate detection policy.
func WithSimilarityPolicy(policy SimilarityPolicy) Option {
	return func(e *Engine) {
		e.dedup = NewDeduplicator(policy)
	}
}

// NewEngine creates a retrieval engine. The synonym provider may be nil, in
// which case the synonym levels never contribute results.
func NewEngine(index Index, embedder Embedder, synonyms SynonymProvider, cfg Config, opts ...Option) (*Engine, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.SemanticCount < 0 {
		cfg.SemanticCount = DefaultConfig().SemanticCount
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultConfig().QueryTimeout
	}
	if len(cfg.FunctionWords) == 0 {
		cfg.FunctionWords = DefaultFunctionWords()
	}

	e := &Engine{
		index:    index,
		embedder: embedder,
		synonyms: synonyms,
		dedup:    NewDeduplicator(NewEditRatioPolicy(cfg.SimilarityThreshold)),
		cfg:      cfg,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Batch is the result of one GetNextBatch call.
type Batch struct {
	// Sentences is the keyword-phase portion followed by the semantic
	// portion, each internally ranked.
	Sentences []store.Sentence
	// LevelsUsed lists the keyword-phase levels that contributed, in order.
	LevelsUsed []int
	// State is the advanced session state. The caller commits it; the
	// stored state is untouched until then.
	State *store.SessionState
	// Exhausted is set when neither phase produced anything: there are no
	// further results for this session.
	Exhausted bool
}

// GetNextBatch pulls the next batch of source sentences for a session.
//
// The keyword phase walks levels from state.CurrentLevel, deduplicating each
// level's output against everything already delivered, until the keyword
// quota (batchSize - semanticCount) is filled or every level is exhausted.
// The semantic portion always follows, and its failure is the only one that
// surfaces: every keyword-phase failure just degrades that level.
//
// The same sentence identifier is never returned twice across the lifetime
// of one session.
func (e *Engine) GetNextBatch(ctx context.Context, state *store.SessionState, batchSize, semanticCount int) (*Batch, error) {
	if batchSize <= 0 {
		batchSize = e.cfg.BatchSize
	}
	if semanticCount < 0 {
		semanticCount = e.cfg.SemanticCount
	}
	if semanticCount > batchSize {
		semanticCount = batchSize
	}

	st := state.Clone()
	exclude := st.UsedIDs
	quota := batchSize - semanticCount

	table, embedQuestion := e.buildStrategies(st.Keywords, st.Question)

	var keywordHits []store.Sentence
	var levelsUsed []int

	for len(keywordHits) < quota && st.CurrentLevel <= store.LevelPureSemantic {
		level := st.CurrentLevel
		strat := table[level]

		if !strat.Available() {
			e.log.Debug("level skipped, preconditions unmet",
				zap.String("session", st.ID), zap.Int("level", level))
			if level >= store.LevelPureSemantic {
				break
			}
			st.CurrentLevel = level + 1
			continue
		}

		prevOffset := st.Offsets[level]
		qctx, cancel := context.WithTimeout(ctx, e.cfg.QueryTimeout)
		res, err := strat.Next(qctx, prevOffset, quota-len(keywordHits), exclude)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				// Caller abandoned the request: discard partial work,
				// nothing is committed.
				return nil, ctx.Err()
			}
			e.log.Warn("level degraded to exhausted",
				zap.String("session", st.ID),
				zap.String("level", strat.Name()),
				zap.Error(err))
			res = StrategyResult{NewOffset: prevOffset, Exhausted: true}
		}

		accepted := e.dedup.Filter(res.Hits, exclude)
		for i := range accepted {
			accepted[i].Level = level
			accepted[i].Source = store.SourceForLevel(level)
			exclude[accepted[i].ID] = true
		}
		if len(accepted) > 0 {
			keywordHits = append(keywordHits, accepted...)
			if len(levelsUsed) == 0 || levelsUsed[len(levelsUsed)-1] != level {
				levelsUsed = append(levelsUsed, level)
			}
		}
		if res.NewOffset > st.Offsets[level] {
			st.Offsets[level] = res.NewOffset
		}

		if res.Exhausted {
			if level >= store.LevelPureSemantic {
				break
			}
			st.CurrentLevel = level + 1
			continue
		}
		if len(accepted) == 0 && res.NewOffset == prevOffset {
			// No progress and not exhausted: stop rather than spin.
			break
		}
	}

	semanticHits, err := e.semanticPortion(ctx, embedQuestion, semanticCount, exclude)
	if err != nil {
		return nil, err
	}
	for i := range semanticHits {
		semanticHits[i].Level = store.LevelSemanticPortion
		semanticHits[i].Source = store.SourceSemanticSearch
		exclude[semanticHits[i].ID] = true
	}

	st.BatchCount++
	combined := make([]store.Sentence, 0, len(keywordHits)+len(semanticHits))
	combined = append(combined, keywordHits...)
	combined = append(combined, semanticHits...)

	e.log.Info("batch assembled",
		zap.String("session", st.ID),
		zap.Int("keyword_hits", len(keywordHits)),
		zap.Int("semantic_hits", len(semanticHits)),
		zap.Int("current_level", st.CurrentLevel),
		zap.Ints("levels_used", levelsUsed))

	return &Batch{
		Sentences:  combined,
		LevelsUsed: levelsUsed,
		State:      st,
		Exhausted:  len(combined) == 0,
	}, nil
}

// semanticPortion runs the mandatory pure-semantic search. It excludes every
// identifier delivered so far, both by the keyword phase of this call and by
// the session's history.
func (e *Engine) semanticPortion(ctx context.Context, embedQuestion func(context.Context) ([]float32, error), count int, exclude map[string]bool) ([]store.Sentence, error) {
	if count <= 0 {
		return nil, nil
	}
	vec, err := embedQuestion(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding question: %v", ErrSemanticSearch, err)
	}
	excludeIDs := make([]string, 0, len(exclude))
	for id := range exclude {
		excludeIDs = append(excludeIDs, id)
	}
	// Small headroom so near-duplicate suppression does not leave the
	// portion short.
	found, err := e.index.VectorRank(ctx, vec, excludeIDs, 0, count*2+5)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSemanticSearch, err)
	}
	accepted := e.dedup.Filter(found, exclude)
	if len(accepted) > count {
		accepted = accepted[:count]
	}
	return accepted, nil
}

// buildStrategies assembles the per-call dispatch table. Sequences and the
// question vector are materialized lazily so a level that is never reached
// costs nothing.
func (e *Engine) buildStrategies(keywords []string, question string) (map[int]Strategy, func(context.Context) ([]float32, error)) {
	fw := e.cfg.FunctionWords
	synTable := newSynonymTable(e.synonyms, e.log)

	embedQuestion := memoizeVec(func(ctx context.Context) ([]float32, error) {
		return e.embedder.Embed(ctx, question)
	})

	table := map[int]Strategy{
		store.LevelKeywordCombos: &termSeqStrategy{
			name:      "level_0",
			index:     e.index,
			available: len(keywords) >= 2,
			seq: memoizeSeq(func(ctx context.Context) [][]string {
				return KeywordCombinations(keywords)
			}),
		},
		store.LevelKeywordPhrase: &termSeqStrategy{
			name:      "level_1",
			index:     e.index,
			phrase:    true,
			available: len(keywords) >= 1,
			seq: memoizeSeq(func(ctx context.Context) [][]string {
				return pairSeq(phrasePairs(keywords, fw))
			}),
		},
		store.LevelSynonymCombos: &termSeqStrategy{
			name:      "level_2",
			index:     e.index,
			available: len(keywords) >= 1 && e.synonyms != nil,
			seq: memoizeSeq(func(ctx context.Context) [][]string {
				return SynonymVariants(keywords, synTable.all(ctx, keywords))
			}),
		},
		store.LevelSynonymPhrase: &termSeqStrategy{
			name:      "level_3",
			index:     e.index,
			phrase:    true,
			available: len(keywords) >= 1 && e.synonyms != nil,
			seq: memoizeSeq(func(ctx context.Context) [][]string {
				var terms []string
				for _, kw := range keywords {
					terms = append(terms, synTable.lookup(ctx, kw)...)
				}
				return pairSeq(phrasePairs(terms, fw))
			}),
		},
		store.LevelPureSemantic: &semanticStrategy{
			index: e.index,
			vec:   embedQuestion,
		},
	}
	return table, embedQuestion
}

func pairSeq(pairs []phrasePair) [][]string {
	seq := make([][]string, len(pairs))
	for i, p := range pairs {
		seq[i] = []string{p.term, p.fn}
	}
	return seq
}

func memoizeSeq(build func(context.Context) [][]string) func(context.Context) [][]string {
	var cached [][]string
	var done bool
	return func(ctx context.Context) [][]string {
		if !done {
			cached = build(ctx)
			done = true
		}
		return cached
	}
}

func memoizeVec(embed func(context.Context) ([]float32, error)) func(context.Context) ([]float32, error) {
	var cached []float32
	var done bool
	return func(ctx context.Context) ([]float32, error) {
		if done {
			return cached, nil
		}
		vec, err := embed(ctx)
		if err != nil {
			return nil, err
		}
		cached = vec
		done = true
		return cached, nil
	}
}
