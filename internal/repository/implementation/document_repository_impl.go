package implementation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tigernone/corpusqa/internal/model"
	"github.com/tigernone/corpusqa/internal/repository/contract"
)

// ErrDocumentNotFound is returned when a document id or checksum is unknown.
var ErrDocumentNotFound = errors.New("document not found")

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("creating document %s: %w", doc.Name, err)
	}
	return nil
}

func (r *documentRepository) Update(ctx context.Context, doc *model.Document) error {
	if err := r.db.WithContext(ctx).Save(doc).Error; err != nil {
		return fmt.Errorf("updating document %s: %w", doc.ID, err)
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading document %s: %w", id, err)
	}
	return &doc, nil
}

func (r *documentRepository) GetByChecksum(ctx context.Context, checksum string) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).First(&doc, "checksum = ?", checksum).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading document by checksum: %w", err)
	}
	return &doc, nil
}

func (r *documentRepository) List(ctx context.Context) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&model.Document{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	return nil
}

func (r *documentRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Exec("TRUNCATE TABLE documents").Error; err != nil {
		return fmt.Errorf("truncating documents: %w", err)
	}
	return nil
}
