package retrieval

import (
	"context"

	"go.uber.org/zap"
)

// synonymTable caches synonym lookups for the lifetime of one orchestration
// call. It is never shared across calls: synonym generation is an upstream
// LLM service and results are not persisted.
type synonymTable struct {
	provider SynonymProvider
	cache    map[string][]string
	log      *zap.Logger
}

func newSynonymTable(provider SynonymProvider, log *zap.Logger) *synonymTable {
	return &synonymTable{
		provider: provider,
		cache:    make(map[string][]string),
		log:      log,
	}
}

// lookup returns the synonyms for a term, fetching at most once per call.
// A provider failure degrades the term to an empty synonym list.
func (t *synonymTable) lookup(ctx context.Context, term string) []string {
	if syns, ok := t.cache[term]; ok {
		return syns
	}
	if t.provider == nil {
		t.cache[term] = nil
		return nil
	}
	syns, err := t.provider.Synonyms(ctx, term)
	if err != nil {
		t.log.Warn("synonym lookup failed, term contributes nothing at synonym levels",
			zap.String("term", term), zap.Error(err))
		syns = nil
	}
	t.cache[term] = syns
	return syns
}

// all resolves synonyms for every keyword, preserving keyword order.
func (t *synonymTable) all(ctx context.Context, keywords []string) map[string][]string {
	out := make(map[string][]string, len(keywords))
	for _, kw := range keywords {
		out[kw] = t.lookup(ctx, kw)
	}
	return out
}
