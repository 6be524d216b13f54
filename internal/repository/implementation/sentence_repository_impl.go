package implementation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/tigernone/corpusqa/internal/model"
	"github.com/tigernone/corpusqa/internal/repository/contract"
	"github.com/tigernone/corpusqa/pkg/retrieval"
	"github.com/tigernone/corpusqa/pkg/store"
)

const insertBatchSize = 500

type sentenceRepository struct {
	db *gorm.DB
}

// NewSentenceRepository creates the Postgres-backed corpus index. Full-text
// matching runs against the generated tsvector column; vector ranking uses
// pgvector cosine distance.
func NewSentenceRepository(db *gorm.DB) contract.SentenceRepository {
	return &sentenceRepository{db: db}
}

func (r *sentenceRepository) Search(ctx context.Context, q retrieval.Query) ([]store.Sentence, error) {
	if len(q.Terms) == 0 {
		return nil, nil
	}

	db := r.db.WithContext(ctx).Model(&model.Sentence{})
	text := strings.Join(q.Terms, " ")
	switch {
	case q.ExactPhrase:
		// phraseto_tsquery requires the terms to be adjacent and in order,
		// which is the zero-slop phrase match the phrase levels need.
		db = db.Where("search_vector @@ phraseto_tsquery('simple', ?)", text)
	case q.RequireAll:
		// plainto_tsquery ANDs every lexeme, so a sentence matches only
		// when all terms appear.
		db = db.Where("search_vector @@ plainto_tsquery('simple', ?)", text)
	default:
		db = db.Where("search_vector @@ to_tsquery('simple', ?)", orQuery(q.Terms))
	}

	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}

	var rows []model.Sentence
	if err := db.Order("sentence_index ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}
	return toDomain(rows, nil), nil
}

func (r *sentenceRepository) VectorRank(ctx context.Context, vector []float32, excludeIDs []string, offset, limit int) ([]store.Sentence, error) {
	if len(vector) == 0 {
		return nil, nil
	}
	vec := pgvector.NewVector(vector)

	type rankedRow struct {
		model.Sentence
		Score float32
	}

	db := r.db.WithContext(ctx).Model(&model.Sentence{}).
		Select("*, 1 - (embedding <=> ?) AS score", vec)
	if len(excludeIDs) > 0 {
		db = db.Where("id NOT IN ?", excludeIDs)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}

	var rows []rankedRow
	if err := db.Order(gorm.Expr("embedding <=> ?", vec)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("vector rank: %w", err)
	}

	out := make([]store.Sentence, 0, len(rows))
	for _, row := range rows {
		s := rowToDomain(row.Sentence)
		s.Score = row.Score
		out = append(out, s)
	}
	return out, nil
}

func (r *sentenceRepository) BulkInsert(ctx context.Context, sentences []model.Sentence) error {
	if len(sentences) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(sentences, insertBatchSize).Error; err != nil {
		return fmt.Errorf("inserting %d sentences: %w", len(sentences), err)
	}
	return nil
}

func (r *sentenceRepository) UpdateEmbedding(ctx context.Context, id string, vector []float32) error {
	err := r.db.WithContext(ctx).Model(&model.Sentence{}).
		Where("id = ?", id).
		Update("embedding", pgvector.NewVector(vector)).Error
	if err != nil {
		return fmt.Errorf("updating embedding for sentence %s: %w", id, err)
	}
	return nil
}

func (r *sentenceRepository) GetByID(ctx context.Context, id string) (*store.Sentence, error) {
	var row model.Sentence
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("sentence %s: %w", id, gorm.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading sentence %s: %w", id, err)
	}
	s := rowToDomain(row)
	return &s, nil
}

func (r *sentenceRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Sentence{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting sentences: %w", err)
	}
	return n, nil
}

func (r *sentenceRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	if err := r.db.WithContext(ctx).Where("document_id = ?", documentID).Delete(&model.Sentence{}).Error; err != nil {
		return fmt.Errorf("deleting sentences for document %s: %w", documentID, err)
	}
	return nil
}

func (r *sentenceRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Exec("TRUNCATE TABLE sentences").Error; err != nil {
		return fmt.Errorf("truncating sentences: %w", err)
	}
	return nil
}

// orQuery builds a to_tsquery expression ORing the terms. Terms are quoted
// so punctuation in user keywords cannot break the query syntax.
func orQuery(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ReplaceAll(t, "'", "''")
		quoted = append(quoted, "'"+t+"'")
	}
	return strings.Join(quoted, " | ")
}

func rowToDomain(row model.Sentence) store.Sentence {
	return store.Sentence{
		ID:            row.ID,
		Text:          row.Content,
		SentenceIndex: row.SentenceIndex,
	}
}

func toDomain(rows []model.Sentence, scores []float32) []store.Sentence {
	out := make([]store.Sentence, 0, len(rows))
	for i, row := range rows {
		s := rowToDomain(row)
		if scores != nil && i < len(scores) {
			s.Score = scores[i]
		}
		out = append(out, s)
	}
	return out
}
