package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tigernone/corpusqa/internal/dto"
	"github.com/tigernone/corpusqa/internal/model"
	"github.com/tigernone/corpusqa/internal/repository/contract"
	"github.com/tigernone/corpusqa/pkg/events"
	"github.com/tigernone/corpusqa/pkg/nats"
	"github.com/tigernone/corpusqa/pkg/splitter"
)

// ErrCorpusExists signals that the exact same corpus text was already
// uploaded.
var ErrCorpusExists = errors.New("corpus already uploaded")

type IIngestService interface {
	// Upload stores a document's sentences and queues them for embedding.
	// With replace set, everything previously uploaded is dropped first and
	// all sessions are cleared.
	Upload(ctx context.Context, req dto.UploadCorpusRequest, replace bool) (*dto.UploadCorpusResponse, error)
	Stats(ctx context.Context) (*dto.CorpusStatsResponse, error)
	// Clear drops every document and sentence and flushes all sessions.
	Clear(ctx context.Context) error
}

type ingestService struct {
	sentences contract.SentenceRepository
	documents contract.DocumentRepository
	sessions  contract.SessionRepository
	pubSub    *gochannel.GoChannel
	topicName string
	bus       *nats.Publisher
	log       *zap.Logger
}

func NewIngestService(
	sentences contract.SentenceRepository,
	documents contract.DocumentRepository,
	sessions contract.SessionRepository,
	pubSub *gochannel.GoChannel,
	topicName string,
	bus *nats.Publisher,
	log *zap.Logger,
) IIngestService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ingestService{
		sentences: sentences,
		documents: documents,
		sessions:  sessions,
		pubSub:    pubSub,
		topicName: topicName,
		bus:       bus,
		log:       log,
	}
}

func (s *ingestService) Upload(ctx context.Context, req dto.UploadCorpusRequest, replace bool) (*dto.UploadCorpusResponse, error) {
	checksum := sha256Hex(req.Text)

	if replace {
		if err := s.dropEverything(ctx); err != nil {
			return nil, err
		}
	} else {
		existing, err := s.documents.GetByChecksum(ctx, checksum)
		if err == nil && existing != nil {
			return nil, fmt.Errorf("%w: document %s", ErrCorpusExists, existing.ID)
		}
	}

	mode := splitter.Mode(req.Mode)
	if mode == "" {
		mode = splitter.ModeAuto
	}
	texts := splitter.Split(req.Text, mode)
	if len(texts) == 0 {
		return nil, fmt.Errorf("corpus %q produced no sentences", req.Name)
	}

	doc := &model.Document{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Checksum:      checksum,
		SentenceCount: len(texts),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	rows := make([]model.Sentence, len(texts))
	for i, text := range texts {
		rows[i] = model.Sentence{
			ID:            uuid.NewString(),
			DocumentID:    doc.ID,
			SentenceIndex: i,
			Content:       text,
			CreatedAt:     time.Now(),
		}
	}
	if err := s.sentences.BulkInsert(ctx, rows); err != nil {
		return nil, err
	}

	for _, row := range rows {
		if err := s.queueEmbedding(row); err != nil {
			return nil, fmt.Errorf("queueing embeddings for document %s: %w", doc.ID, err)
		}
	}

	s.publishEvent(ctx, events.CorpusUploaded(doc.ID, doc.Name, len(rows)))
	if replace {
		s.publishEvent(ctx, events.CorpusReplaced(doc.ID, doc.Name))
	}

	s.log.Info("corpus uploaded",
		zap.String("document_id", doc.ID),
		zap.String("name", doc.Name),
		zap.Int("sentences", len(rows)),
		zap.Bool("replace", replace))

	return &dto.UploadCorpusResponse{
		DocumentID:    doc.ID,
		Name:          doc.Name,
		SentenceCount: len(rows),
		Replaced:      replace,
	}, nil
}

func (s *ingestService) Stats(ctx context.Context) (*dto.CorpusStatsResponse, error) {
	docs, err := s.documents.List(ctx)
	if err != nil {
		return nil, err
	}
	count, err := s.sentences.Count(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.sessions.ActiveCount(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CorpusStatsResponse{
		Documents:      len(docs),
		Sentences:      count,
		ActiveSessions: active,
	}, nil
}

func (s *ingestService) Clear(ctx context.Context) error {
	if err := s.dropEverything(ctx); err != nil {
		return err
	}
	s.log.Info("corpus cleared")
	return nil
}

func (s *ingestService) dropEverything(ctx context.Context) error {
	if err := s.sentences.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.documents.DeleteAll(ctx); err != nil {
		return err
	}
	active, _ := s.sessions.ActiveCount(ctx)
	if err := s.sessions.ClearAll(ctx); err != nil {
		return err
	}
	s.publishEvent(ctx, events.SessionsCleared(active))
	return nil
}

func (s *ingestService) queueEmbedding(row model.Sentence) error {
	payload, err := json.Marshal(dto.EmbedSentenceMessage{
		SentenceID: row.ID,
		DocumentID: row.DocumentID,
		Content:    row.Content,
	})
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return s.pubSub.Publish(s.topicName, msg)
}

func (s *ingestService) publishEvent(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.log.Warn("publishing event failed",
			zap.String("type", event.EventType()), zap.Error(err))
	}
}

func sha256Hex(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
