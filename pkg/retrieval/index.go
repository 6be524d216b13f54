package retrieval

import (
	"context"

	"github.com/tigernone/corpusqa/pkg/store"
)

// Query is a term-based search against the document index.
type Query struct {
	// Terms to match, in order.
	Terms []string
	// ExactPhrase requires the terms to appear contiguous and in order
	// (zero slop). Implies RequireAll.
	ExactPhrase bool
	// RequireAll requires every term to be present somewhere in the sentence.
	// When false, any term is enough.
	RequireAll bool
	Offset     int
	Limit      int
}

// Index is the engine's view of the document index. The index never ranks
// below sentence granularity.
type Index interface {
	// Search runs a boolean/term query, optionally as an exact phrase. Hits
	// come back in corpus order (sentence index), which keeps pagination via
	// Offset stable: a boolean match either holds or it does not, and rank
	// scores over identical term sets are all ties.
	Search(ctx context.Context, q Query) ([]store.Sentence, error)

	// VectorRank ranks the whole corpus by similarity to the query vector,
	// no term filter, skipping excluded identifiers.
	VectorRank(ctx context.Context, vector []float32, excludeIDs []string, offset, limit int) ([]store.Sentence, error)
}

// Embedder produces the query vector for pure-semantic search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SynonymProvider returns alternative terms for a keyword, most relevant
// first. An empty result is valid and means the keyword contributes nothing
// at the synonym levels.
type SynonymProvider interface {
	Synonyms(ctx context.Context, term string) ([]string, error)
}
