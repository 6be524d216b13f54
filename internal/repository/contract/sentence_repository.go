package contract

import (
	"context"

	"github.com/tigernone/corpusqa/internal/model"
	"github.com/tigernone/corpusqa/pkg/retrieval"
	"github.com/tigernone/corpusqa/pkg/store"
)

// SentenceRepository is the corpus index. Its Search and VectorRank methods
// satisfy retrieval.Index; the rest cover ingestion and maintenance.
type SentenceRepository interface {
	retrieval.Index

	BulkInsert(ctx context.Context, sentences []model.Sentence) error
	UpdateEmbedding(ctx context.Context, id string, vector []float32) error
	GetByID(ctx context.Context, id string) (*store.Sentence, error)
	Count(ctx context.Context) (int64, error)
	DeleteByDocument(ctx context.Context, documentID string) error
	DeleteAll(ctx context.Context) error
}

// DocumentRepository tracks uploaded corpus files.
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	Update(ctx context.Context, doc *model.Document) error
	GetByID(ctx context.Context, id string) (*model.Document, error)
	GetByChecksum(ctx context.Context, checksum string) (*model.Document, error)
	List(ctx context.Context) ([]model.Document, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}
