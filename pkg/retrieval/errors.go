package retrieval

import "errors"

var (
	// ErrIndexRequired is returned when an Engine is built without a document index.
	ErrIndexRequired = errors.New("document index required")

	// ErrEmbedderRequired is returned when an Engine is built without an embedder.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrSemanticSearch is returned when the mandatory semantic-fallback query
	// fails. Unlike keyword-phase failures it has no further fallback, so it
	// surfaces to the caller.
	ErrSemanticSearch = errors.New("semantic search failed")
)
