package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"

	"github.com/tigernone/corpusqa/internal/dto"
	"github.com/tigernone/corpusqa/internal/repository/contract"
	"github.com/tigernone/corpusqa/pkg/embedding"
	"github.com/tigernone/corpusqa/pkg/events"
	"github.com/tigernone/corpusqa/pkg/nats"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the embedding queue: each message is one sentence
// whose vector has not been computed yet.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	sentences contract.SentenceRepository
	provider  embedding.Provider
	bus       *nats.Publisher
	log       *zap.Logger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	sentences contract.SentenceRepository,
	provider embedding.Provider,
	bus *nats.Publisher,
	log *zap.Logger,
) IConsumerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		sentences: sentences,
		provider:  provider,
		bus:       bus,
		log:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.EmbedSentenceMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("failed to unmarshal embed message", zap.Error(err))
		// Ack invalid messages to prevent infinite retry.
		msg.Ack()
		return
	}

	vec, err := cs.provider.Generate(ctx, payload.Content, embedding.TaskDocument)
	if err != nil {
		cs.log.Error("embedding failed",
			zap.String("sentence_id", payload.SentenceID), zap.Error(err))
		msg.Nack()
		return
	}

	if err := cs.sentences.UpdateEmbedding(ctx, payload.SentenceID, vec); err != nil {
		cs.log.Error("storing embedding failed",
			zap.String("sentence_id", payload.SentenceID), zap.Error(err))
		msg.Nack()
		return
	}

	cs.log.Debug("sentence embedded",
		zap.String("sentence_id", payload.SentenceID),
		zap.String("document_id", payload.DocumentID))

	if cs.bus != nil {
		if err := cs.bus.Publish(ctx, events.CorpusIndexed(payload.DocumentID, 1)); err != nil {
			cs.log.Warn("publishing indexed event failed", zap.Error(err))
		}
	}

	msg.Ack()
}
