package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Sentence is the persisted unit of retrieval. The search_vector column is a
// generated tsvector over content using the 'simple' configuration; the
// 'english' configuration would strip the stopwords the phrase levels depend
// on ("is", "the", "of"), so it must never be used here.
type Sentence struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID    string          `gorm:"type:uuid;index:idx_sentences_document" json:"document_id"`
	SentenceIndex int             `gorm:"index:idx_sentences_order" json:"sentence_index"`
	Content       string          `gorm:"type:text;not null" json:"content"`
	SearchVector  string          `gorm:"type:tsvector;->" json:"-"`
	Embedding     pgvector.Vector `gorm:"type:vector(768)" json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (Sentence) TableName() string {
	return "sentences"
}

// Document tracks one uploaded corpus file.
type Document struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	Checksum      string    `gorm:"type:varchar(64);index" json:"checksum"`
	SentenceCount int       `json:"sentence_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}
