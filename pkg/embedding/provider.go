package embedding

import "context"

// Task types passed to providers that distinguish query and document
// embeddings. Providers that make no distinction ignore them.
const (
	TaskQuery    = "RETRIEVAL_QUERY"
	TaskDocument = "RETRIEVAL_DOCUMENT"
)

// Provider generates a unit-length embedding for a piece of text. Vectors
// must be normalized: cosine distance in the index assumes magnitude 1.
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
}

// QueryEmbedder adapts a Provider to the single-method embedder the
// retrieval engine expects, fixing the task type to query.
type QueryEmbedder struct {
	Provider Provider
}

func (q QueryEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return q.Provider.Generate(ctx, text, TaskQuery)
}
